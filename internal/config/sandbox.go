package config

import (
	"strconv"
	"time"
)

const (
	BackendJudge0 = "judge0"
	BackendPiston = "piston"
	BackendLocal  = "local"
	BackendLambda = "lambda"
)

type SandboxConfig struct {
	// Routes maps a language to the backend that runs it
	Routes map[string]string
	Judge0 *Judge0Config
	Piston *PistonConfig
	Local  *LocalSandboxConfig
	Lambda *LambdaConfig
}

func NewSandboxConfig() *SandboxConfig {
	routes := map[string]string{
		"python":     BackendJudge0,
		"javascript": BackendPiston,
	}
	for lang, backend := range getMapEnv("SANDBOX_ROUTES") {
		routes[lang] = backend
	}
	return &SandboxConfig{
		Routes: routes,
		Judge0: NewJudge0Config(),
		Piston: NewPistonConfig(),
		Local:  NewLocalSandboxConfig(),
		Lambda: NewLambdaConfig(),
	}
}

type Judge0Config struct {
	BaseURL  string
	APIKey   string
	APIHost  string
	Language map[string]int

	// RequestTimeout bounds every single submit or poll request
	RequestTimeout  time.Duration
	PollInterval    time.Duration
	PollBackoff     float64
	MaxPollInterval time.Duration
	MaxPollAttempts int

	CPUTimeLimitCap  int
	CPUExtraTime     int
	WallTimeLimitCap int
	MemoryLimitKB    int
	StackLimitKB     int
	MaxFileSizeKB    int
}

func NewJudge0Config() *Judge0Config {
	languages := map[string]int{
		"python":     71,
		"javascript": 63,
	}
	for lang, id := range getMapEnv("JUDGE0_LANGUAGE_IDS") {
		if n, err := strconv.Atoi(id); err == nil {
			languages[lang] = n
		}
	}
	return &Judge0Config{
		BaseURL:          getEnv("JUDGE0_API_URL", "https://judge0-ce.p.rapidapi.com"),
		APIKey:           getEnv("JUDGE0_API_KEY", ""),
		APIHost:          getEnv("JUDGE0_HOST", "judge0-ce.p.rapidapi.com"),
		Language:         languages,
		RequestTimeout:   getSecondsEnv("JUDGE0_REQUEST_TIMEOUT_SEC", 10*time.Second),
		PollInterval:     getSecondsEnv("JUDGE0_POLL_INTERVAL_SEC", time.Second),
		PollBackoff:      getFloatEnv("JUDGE0_POLL_BACKOFF", 1.0),
		MaxPollInterval:  getSecondsEnv("JUDGE0_MAX_POLL_INTERVAL_SEC", 5*time.Second),
		MaxPollAttempts:  getIntEnv("JUDGE0_MAX_POLL_ATTEMPTS", 30),
		CPUTimeLimitCap:  20,
		CPUExtraTime:     2,
		WallTimeLimitCap: 30,
		MemoryLimitKB:    128000,
		StackLimitKB:     64000,
		MaxFileSizeKB:    1024,
	}
}

// PistonRuntime pins a language to a runtime version and entry file name
type PistonRuntime struct {
	Language string
	Version  string
	FileName string
}

type PistonConfig struct {
	URL      string
	Runtimes map[string]PistonRuntime
	// ExtraTimeout is added to the per-test timeout for the HTTP round trip
	ExtraTimeout time.Duration
}

func NewPistonConfig() *PistonConfig {
	return &PistonConfig{
		URL: getEnv("PISTON_API_URL", "https://emkc.org/api/v2/piston/execute"),
		Runtimes: map[string]PistonRuntime{
			"javascript": {Language: "javascript", Version: getEnv("PISTON_JAVASCRIPT_VERSION", "18.15.0"), FileName: "main.js"},
			"python":     {Language: "python", Version: getEnv("PISTON_PYTHON_VERSION", "3.10.0"), FileName: "main.py"},
		},
		ExtraTimeout: 10 * time.Second,
	}
}

// Interpreter describes how the local sandbox runs one language
type Interpreter struct {
	Command   string
	Args      []string
	Extension string
	// Preload is written to its own scratch file and loaded before the source.
	// The source file always holds the submission verbatim.
	Preload string
	// PreloadFlag precedes the preload path on the command line, e.g. node's --require.
	// Without it the preload path is passed as a plain argument before the source path.
	PreloadFlag string
}

type LocalSandboxConfig struct {
	ScratchDir   string
	Interpreters map[string]Interpreter
}

func NewLocalSandboxConfig() *LocalSandboxConfig {
	return &LocalSandboxConfig{
		ScratchDir: getEnv("LOCAL_SANDBOX_SCRATCH_DIR", ""),
		Interpreters: map[string]Interpreter{
			"python": {
				Command:   getEnv("LOCAL_SANDBOX_PYTHON", "python3"),
				Extension: ".py",
			},
			"javascript": {
				Command:   getEnv("LOCAL_SANDBOX_NODE", "node"),
				Extension:   ".js",
				Preload:     NodeErrorPreload,
				PreloadFlag: "--require",
			},
		},
	}
}

// NodeErrorPreload reports uncaught errors on stderr with exit code 1.
// It only routes diagnostics, console output is left untouched.
const NodeErrorPreload = `process.on('uncaughtException', (err) => { process.stderr.write(String((err && err.stack) || err) + '\n'); process.exit(1); });
process.on('unhandledRejection', (err) => { process.stderr.write(String((err && err.stack) || err) + '\n'); process.exit(1); });
`

type LambdaConfig struct {
	FunctionName string
	Region       string
}

func NewLambdaConfig() *LambdaConfig {
	return &LambdaConfig{
		FunctionName: getEnv("AWS_LAMBDA_FUNCTION", ""),
		Region:       getEnv("AWS_REGION", "ap-south-1"),
	}
}
