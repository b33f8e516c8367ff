package probes

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/sky-health/internal/domain"
	"github.com/doeshing/sky-health/internal/pkg/logger"
)

type stubResponse struct {
	result domain.ExecutionResult
	err    error
}

// stubRunner answers commands keyed by their full argv joined with spaces.
// Unknown commands behave like a binary missing from PATH.
type stubRunner struct {
	mu        sync.Mutex
	responses map[string]stubResponse
	calls     []string
}

func newStubRunner() *stubRunner {
	return &stubRunner{responses: map[string]stubResponse{}}
}

func (s *stubRunner) on(command, stdout string) *stubRunner {
	s.responses[command] = stubResponse{result: domain.ExecutionResult{Stdout: stdout}}
	return s
}

func (s *stubRunner) fail(command string, kind domain.FailureKind, stdout string) *stubRunner {
	s.responses[command] = stubResponse{
		result: domain.ExecutionResult{Stdout: stdout, ExitCode: 1},
		err:    domain.NewProbeError(kind, command, errors.New("exit status 1")),
	}
	return s
}

func (s *stubRunner) Run(_ context.Context, name string, args ...string) (domain.ExecutionResult, error) {
	command := strings.Join(append([]string{name}, args...), " ")
	s.mu.Lock()
	s.calls = append(s.calls, command)
	s.mu.Unlock()
	if resp, ok := s.responses[command]; ok {
		return resp.result, resp.err
	}
	return domain.ExecutionResult{ExitCode: -1}, domain.NewProbeError(domain.FailureCommandUnavailable, command, errors.New("executable file not found in $PATH"))
}

type stubMemory struct {
	free uint64
	err  error
}

func (s stubMemory) FreeBytes(context.Context) (uint64, error) {
	return s.free, s.err
}

func testConfig() domain.Config {
	return domain.Config{
		GatewayProcess: "clawdbot",
		GatewayCLI:     "clawdbot",
		DiskMount:      "/",
	}
}

func probeFor(t *testing.T, defs []domain.CheckDefinition, name string) domain.CheckDefinition {
	t.Helper()
	for _, def := range defs {
		if def.Name == name {
			return def
		}
	}
	t.Fatalf("no check named %q", name)
	return domain.CheckDefinition{}
}

func newTestRegistry(t *testing.T, runner *stubRunner, mem stubMemory) []domain.CheckDefinition {
	t.Helper()
	defs, err := NewRegistry(Deps{Runner: runner, Memory: mem, Logger: logger.Discard(), GOOS: "linux"}, testConfig())
	require.NoError(t, err)
	return defs
}

func run(t *testing.T, def domain.CheckDefinition) domain.CheckResult {
	t.Helper()
	return def.Probe(context.Background())
}

func TestNewRegistryOrderAndPolicies(t *testing.T) {
	defs := newTestRegistry(t, newStubRunner(), stubMemory{})

	var names []string
	for _, def := range defs {
		names = append(names, def.Name)
	}
	assert.Equal(t, []string{"Clawdbot Gateway", "WhatsApp", "Docker", "Tailscale", "Disk Space", "Memory"}, names)

	for _, def := range defs[:4] {
		assert.False(t, def.FailsOpen(), "%s must fail closed", def.Name)
	}
	for _, def := range defs[4:] {
		assert.True(t, def.FailsOpen(), "%s must fail open", def.Name)
	}
}

func TestNewRegistryRequiresRunner(t *testing.T) {
	_, err := NewRegistry(Deps{}, testConfig())
	assert.Error(t, err)
}

func TestEveryCheckContainsMissingCommands(t *testing.T) {
	defs := newTestRegistry(t, newStubRunner(), stubMemory{err: domain.NewProbeError(domain.FailureCommandUnavailable, "/proc/meminfo", errors.New("missing"))})

	want := map[string]domain.CheckResult{
		domain.CheckGateway:     {OK: false, Detail: "not running"},
		domain.CheckIntegration: {OK: false, Detail: "unknown"},
		domain.CheckContainers:  {OK: false, Detail: "not running"},
		domain.CheckVPN:         {OK: false, Detail: "not installed"},
		domain.CheckDisk:        {OK: true, Detail: "unknown"},
		domain.CheckMemory:      {OK: true, Detail: "unknown"},
	}
	for _, def := range defs {
		assert.Equal(t, want[def.Name], run(t, def), def.Name)
	}
}

func TestGatewayCheck(t *testing.T) {
	found := newTestRegistry(t, newStubRunner().on("pgrep -f clawdbot", "4242\n"), stubMemory{})
	assert.Equal(t, domain.CheckResult{OK: true, Detail: "running"}, run(t, probeFor(t, found, domain.CheckGateway)))

	missing := newTestRegistry(t, newStubRunner().fail("pgrep -f clawdbot", domain.FailureCommandFailed, ""), stubMemory{})
	assert.Equal(t, domain.CheckResult{OK: false, Detail: "not running"}, run(t, probeFor(t, missing, domain.CheckGateway)))
}

func TestGatewayCheckUsesConfiguredProcess(t *testing.T) {
	runner := newStubRunner().on("pgrep -f my-gateway", "1\n")
	cfg := testConfig()
	cfg.GatewayProcess = "my-gateway"
	defs, err := NewRegistry(Deps{Runner: runner, GOOS: "linux"}, cfg)
	require.NoError(t, err)

	assert.True(t, run(t, probeFor(t, defs, domain.CheckGateway)).OK)
}

func TestIntegrationCheck(t *testing.T) {
	tests := []struct {
		name   string
		runner *stubRunner
		want   domain.CheckResult
	}{
		{
			name:   "connected",
			runner: newStubRunner().on("clawdbot status", "Gateway: running\nWhatsApp: OK (linked)\n"),
			want:   domain.CheckResult{OK: true, Detail: "connected"},
		},
		{
			name:   "disconnected",
			runner: newStubRunner().on("clawdbot status", "whatsapp: not linked\n"),
			want:   domain.CheckResult{OK: false, Detail: "disconnected"},
		},
		{
			name:   "ok on a later whatsapp line",
			runner: newStubRunner().on("clawdbot status", "Channels:\nWhatsApp plugin: loaded\nWhatsApp: OK (linked +1555)\n"),
			want:   domain.CheckResult{OK: true, Detail: "connected"},
		},
		{
			name:   "several whatsapp lines without ok",
			runner: newStubRunner().on("clawdbot status", "WhatsApp plugin: loaded\nwhatsapp: not linked\n"),
			want:   domain.CheckResult{OK: false, Detail: "disconnected"},
		},
		{
			name:   "no channel line",
			runner: newStubRunner().on("clawdbot status", "Gateway: running\n"),
			want:   domain.CheckResult{OK: false, Detail: "unknown"},
		},
		{
			name:   "non-zero exit still scanned",
			runner: newStubRunner().fail("clawdbot status", domain.FailureCommandFailed, "WhatsApp: OK\n"),
			want:   domain.CheckResult{OK: true, Detail: "connected"},
		},
		{
			name:   "timeout is unknown",
			runner: newStubRunner().fail("clawdbot status", domain.FailureCommandTimedOut, "WhatsApp: OK\n"),
			want:   domain.CheckResult{OK: false, Detail: "unknown"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defs := newTestRegistry(t, tt.runner, stubMemory{})
			assert.Equal(t, tt.want, run(t, probeFor(t, defs, domain.CheckIntegration)))
		})
	}
}

func TestContainersCheck(t *testing.T) {
	running := newTestRegistry(t, newStubRunner().on("docker ps -q", "a1b2c3\nd4e5f6\n\n"), stubMemory{})
	assert.Equal(t, domain.CheckResult{OK: true, Detail: "2 containers"}, run(t, probeFor(t, running, domain.CheckContainers)))

	idle := newTestRegistry(t, newStubRunner().on("docker ps -q", ""), stubMemory{})
	assert.Equal(t, domain.CheckResult{OK: false, Detail: "0 containers"}, run(t, probeFor(t, idle, domain.CheckContainers)))

	daemonDown := newTestRegistry(t, newStubRunner().fail("docker ps -q", domain.FailureCommandFailed, ""), stubMemory{})
	assert.Equal(t, domain.CheckResult{OK: false, Detail: "not running"}, run(t, probeFor(t, daemonDown, domain.CheckContainers)))
}

func TestVPNCheck(t *testing.T) {
	connected := newTestRegistry(t, newStubRunner().on("tailscale status", "100.64.0.1  laptop  user@  macOS  -\n"), stubMemory{})
	assert.Equal(t, domain.CheckResult{OK: true, Detail: "connected"}, run(t, probeFor(t, connected, domain.CheckVPN)))

	stopped := newTestRegistry(t, newStubRunner().fail("tailscale status", domain.FailureCommandFailed, "Tailscale is stopped.\n"), stubMemory{})
	assert.Equal(t, domain.CheckResult{OK: false, Detail: "stopped"}, run(t, probeFor(t, stopped, domain.CheckVPN)))

	broken := newTestRegistry(t, newStubRunner().fail("tailscale status", domain.FailureCommandFailed, "failed to connect to local tailscaled\n"), stubMemory{})
	assert.Equal(t, domain.CheckResult{OK: false, Detail: "not installed"}, run(t, probeFor(t, broken, domain.CheckVPN)))
}

func TestDiskCheck(t *testing.T) {
	df := func(pct string) string {
		return "Filesystem     1024-blocks      Used Available Capacity Mounted on\n" +
			"/dev/disk3s1    971350180 123456789  98765432     " + pct + " /\n"
	}
	tests := []struct {
		pct    string
		ok     bool
		detail string
	}{
		{"95%", false, "95% used - CRITICAL"},
		{"91%", false, "91% used - CRITICAL"},
		{"90%", true, "90% used - WARNING"},
		{"85%", true, "85% used - WARNING"},
		{"80%", true, "80% used"},
		{"50%", true, "50% used"},
	}
	for _, tt := range tests {
		t.Run(tt.pct, func(t *testing.T) {
			defs := newTestRegistry(t, newStubRunner().on("df -P /", df(tt.pct)), stubMemory{})
			got := run(t, probeFor(t, defs, domain.CheckDisk))
			assert.Equal(t, tt.ok, got.OK)
			assert.Equal(t, tt.detail, got.Detail)
		})
	}
}

func TestDiskCheckFailsOpenOnGarbage(t *testing.T) {
	defs := newTestRegistry(t, newStubRunner().on("df -P /", "df: /: No such file or directory\n"), stubMemory{})
	assert.Equal(t, domain.CheckResult{OK: true, Detail: "unknown"}, run(t, probeFor(t, defs, domain.CheckDisk)))
}

func TestParseDiskUsage(t *testing.T) {
	pct, err := ParseDiskUsage("Filesystem 512-blocks Used Available Capacity Mounted on\nmap auto_home 0 0 0 100% /System/Volumes/Data/home\n")
	require.NoError(t, err)
	assert.Equal(t, 100, pct)

	for _, bad := range []string{"", "\n\n", "only-one-field", "fs 1 2 3 abc% /", "fs 1 2 3 150% /", "fs 1 2 3 /"} {
		_, err := ParseDiskUsage(bad)
		assert.ErrorIs(t, err, domain.ErrParseFailure, "input %q", bad)
	}
}

func TestClassifyMemoryComparesBeforeRounding(t *testing.T) {
	justUnder := uint64(4996 * bytesPerMB / 10) // ~499.6MB
	assert.Equal(t, domain.CheckResult{OK: false, Detail: "500MB free - LOW"}, ClassifyMemory(justUnder))
	assert.Equal(t, domain.CheckResult{OK: true, Detail: "500MB free"}, ClassifyMemory(500*bytesPerMB))
}

func TestClassifyDiskTiers(t *testing.T) {
	assert.Contains(t, ClassifyDisk(95).Detail, "CRITICAL")
	assert.False(t, ClassifyDisk(95).OK)
	assert.Contains(t, ClassifyDisk(85).Detail, "WARNING")
	assert.True(t, ClassifyDisk(85).OK)

	calm := ClassifyDisk(50)
	assert.True(t, calm.OK)
	assert.NotContains(t, calm.Detail, "WARNING")
	assert.NotContains(t, calm.Detail, "CRITICAL")
}

const vmStatSample = `Mach Virtual Memory Statistics: (page size of 16384 bytes)
Pages free:                               %s.
Pages active:                            412345.
Pages inactive:                          398765.
`

func TestMemoryCheckDarwin(t *testing.T) {
	tests := []struct {
		name   string
		pages  string
		ok     bool
		detail string
	}{
		// 64000 pages * 16 KiB = 1000 MiB
		{"plenty", "64000", true, "1000MB free"},
		// 16000 pages * 16 KiB = 250 MiB
		{"low", "16000", false, "250MB free - LOW"},
		// 32000 pages * 16 KiB = 500 MiB, exactly at the threshold
		{"threshold", "32000", true, "500MB free"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := newStubRunner().on("vm_stat", strings.Replace(vmStatSample, "%s", tt.pages, 1))
			defs, err := NewRegistry(Deps{Runner: runner, GOOS: "darwin"}, testConfig())
			require.NoError(t, err)

			got := run(t, probeFor(t, defs, domain.CheckMemory))
			assert.Equal(t, domain.CheckResult{OK: tt.ok, Detail: tt.detail}, got)
		})
	}
}

func TestMemoryCheckDarwinFailsOpenOnGarbage(t *testing.T) {
	runner := newStubRunner().on("vm_stat", "Pages free: lots\n")
	defs, err := NewRegistry(Deps{Runner: runner, GOOS: "darwin"}, testConfig())
	require.NoError(t, err)

	assert.Equal(t, domain.CheckResult{OK: true, Detail: "unknown"}, run(t, probeFor(t, defs, domain.CheckMemory)))
}

func TestMemoryCheckUsesKernelReader(t *testing.T) {
	low := newTestRegistry(t, newStubRunner(), stubMemory{free: 100 * bytesPerMB})
	got := run(t, probeFor(t, low, domain.CheckMemory))
	assert.False(t, got.OK)
	assert.Contains(t, got.Detail, "LOW")

	high := newTestRegistry(t, newStubRunner(), stubMemory{free: 2048 * bytesPerMB})
	assert.Equal(t, domain.CheckResult{OK: true, Detail: "2048MB free"}, run(t, probeFor(t, high, domain.CheckMemory)))
}

func TestMemoryCheckWithoutSourceFailsOpen(t *testing.T) {
	defs, err := NewRegistry(Deps{Runner: newStubRunner(), GOOS: "plan9"}, testConfig())
	require.NoError(t, err)
	assert.Equal(t, domain.CheckResult{OK: true, Detail: "unknown"}, run(t, probeFor(t, defs, domain.CheckMemory)))
}

func TestParseVMStat(t *testing.T) {
	free, err := ParseVMStat("Pages free: 10.\n", 4096)
	require.NoError(t, err)
	assert.Equal(t, uint64(40960), free, "falls back to the given page size without a header")

	free, err = ParseVMStat(strings.Replace(vmStatSample, "%s", "2", 1), 4096)
	require.NoError(t, err)
	assert.Equal(t, uint64(32768), free, "header page size wins")

	_, err = ParseVMStat("Pages active: 10.\n", 4096)
	assert.ErrorIs(t, err, domain.ErrParseFailure)
}

func TestParseHelpers(t *testing.T) {
	assert.Equal(t, 0, ParseContainerCount(""))
	assert.Equal(t, 3, ParseContainerCount("a\nb\n  \nc"))

	assert.True(t, ParseTailscaleStopped("\nTailscale is Stopped.\nsecond line"))
	assert.False(t, ParseTailscaleStopped("100.64.0.1 host\n# stopped peers listed below"))

	ok, err := ParseIntegrationStatus("WHATSAPP  OK")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = ParseIntegrationStatus("WhatsApp plugin: loaded\nGateway: OK\nWhatsApp: OK")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = ParseIntegrationStatus("WhatsApp plugin: loaded\nGateway: OK")
	require.NoError(t, err)
	assert.False(t, ok, "OK on a non-whatsapp line does not count")
	_, err = ParseIntegrationStatus("")
	assert.ErrorIs(t, err, domain.ErrParseFailure)
}
