package cli

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/vburojevic/simlaunch/internal/bundle"
	"github.com/vburojevic/simlaunch/internal/config"
	"github.com/vburojevic/simlaunch/internal/output"
	"github.com/vburojevic/simlaunch/internal/selector"
)

// DoctorCmd checks system requirements, packaging and configuration
type DoctorCmd struct{}

// checkResult represents a single diagnostic check
type checkResult struct {
	Name    string `json:"name"`
	Status  string `json:"status"` // "ok", "warning", "error"
	Message string `json:"message,omitempty"`
	Details string `json:"details,omitempty"`
}

// doctorReport is the complete diagnostic report
type doctorReport struct {
	Type          string        `json:"type"`
	SchemaVersion int           `json:"schemaVersion"`
	Timestamp     string        `json:"timestamp"`
	Checks        []checkResult `json:"checks"`
	AllPassed     bool          `json:"all_passed"`
	ErrorCount    int           `json:"error_count"`
	WarnCount     int           `json:"warn_count"`
}

// Run executes the doctor command
func (c *DoctorCmd) Run(globals *Globals) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var checks []checkResult

	// Check xcrun
	checks = append(checks, c.checkXcrun(ctx))

	// Check simctl
	checks = append(checks, c.checkSimctl(ctx))

	// Check Xcode
	checks = append(checks, c.checkXcode(ctx))

	// Check osascript (alerts and the native chooser)
	checks = append(checks, c.checkOsascript())

	// Check config file
	checks = append(checks, c.checkConfig())

	// Check the packaged app
	checks = append(checks, c.checkPackagedApp(globals))

	// Check simulators
	checks = append(checks, c.checkSimulators(ctx, globals))

	// Count errors and warnings
	errorCount := 0
	warnCount := 0
	for _, check := range checks {
		if check.Status == "error" {
			errorCount++
		} else if check.Status == "warning" {
			warnCount++
		}
	}

	report := doctorReport{
		Type:          "doctor",
		SchemaVersion: output.SchemaVersion,
		Timestamp:     time.Now().Format(time.RFC3339),
		Checks:        checks,
		AllPassed:     errorCount == 0,
		ErrorCount:    errorCount,
		WarnCount:     warnCount,
	}

	if globals.Format == "ndjson" {
		return output.NewNDJSONWriter(globals.Stdout).WriteRaw(report)
	}

	// Text output
	fmt.Fprintln(globals.Stdout, output.Styles.Header.Render("simlaunch Doctor"))
	fmt.Fprintln(globals.Stdout)

	for _, check := range checks {
		fmt.Fprintf(globals.Stdout, "%s %s\n", output.CheckIcon(check.Status), check.Name)
		if check.Message != "" {
			fmt.Fprintf(globals.Stdout, "  %s\n", check.Message)
		}
		if check.Details != "" {
			fmt.Fprintf(globals.Stdout, "  %s\n", output.Styles.Muted.Render(check.Details))
		}
	}

	fmt.Fprintln(globals.Stdout)
	if errorCount == 0 && warnCount == 0 {
		fmt.Fprintln(globals.Stdout, output.Styles.Success.Render("All checks passed!"))
	} else {
		fmt.Fprintf(globals.Stdout, "Errors: %d, Warnings: %d\n", errorCount, warnCount)
	}

	return nil
}

func (c *DoctorCmd) checkXcrun(ctx context.Context) checkResult {
	cmd := exec.CommandContext(ctx, "xcrun", "--version")
	output, err := cmd.Output()
	if err != nil {
		return checkResult{
			Name:    "xcrun",
			Status:  "error",
			Message: "xcrun not found or not working",
			Details: "Install Xcode Command Line Tools: xcode-select --install",
		}
	}

	version := strings.TrimSpace(string(output))
	return checkResult{
		Name:    "xcrun",
		Status:  "ok",
		Message: version,
	}
}

func (c *DoctorCmd) checkSimctl(ctx context.Context) checkResult {
	cmd := exec.CommandContext(ctx, "xcrun", "simctl", "help")
	if err := cmd.Run(); err != nil {
		return checkResult{
			Name:    "simctl",
			Status:  "error",
			Message: "simctl not accessible",
			Details: "Ensure Xcode is properly installed",
		}
	}

	return checkResult{
		Name:    "simctl",
		Status:  "ok",
		Message: "simctl available",
	}
}

func (c *DoctorCmd) checkXcode(ctx context.Context) checkResult {
	cmd := exec.CommandContext(ctx, "xcode-select", "-p")
	output, err := cmd.Output()
	if err != nil {
		return checkResult{
			Name:    "Xcode",
			Status:  "error",
			Message: "Xcode not found",
			Details: "Install Xcode from the App Store or run: xcode-select --install",
		}
	}

	path := strings.TrimSpace(string(output))

	// Check if it's the full Xcode or just command line tools
	// Xcode path patterns: Xcode.app, Xcode-16.0.app, Xcode-beta.app, etc.
	if strings.Contains(path, "Xcode") && strings.Contains(path, ".app") {
		// Get Xcode version
		versionCmd := exec.CommandContext(ctx, "xcodebuild", "-version")
		versionOutput, _ := versionCmd.Output()
		version := strings.Split(strings.TrimSpace(string(versionOutput)), "\n")[0]

		return checkResult{
			Name:    "Xcode",
			Status:  "ok",
			Message: version,
			Details: path,
		}
	}

	return checkResult{
		Name:    "Xcode",
		Status:  "warning",
		Message: "Only Command Line Tools installed",
		Details: "Full Xcode is recommended for simulator support: " + path,
	}
}

func (c *DoctorCmd) checkOsascript() checkResult {
	path, err := exec.LookPath("osascript")
	if err != nil {
		return checkResult{
			Name:    "osascript",
			Status:  "warning",
			Message: "osascript not found",
			Details: "Native alerts and the simulator dialog are unavailable; use --chooser tui --alert never",
		}
	}

	return checkResult{
		Name:    "osascript",
		Status:  "ok",
		Message: "native alerts and dialogs available",
		Details: path,
	}
}

func (c *DoctorCmd) checkConfig() checkResult {
	configPath := config.ConfigFile()
	if configPath == "" {
		return checkResult{
			Name:    "Config",
			Status:  "ok",
			Message: "Using defaults (no config file)",
			Details: "Create with: simlaunch config generate > ~/.simlaunch.yaml",
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return checkResult{
			Name:    "Config",
			Status:  "error",
			Message: "Config file has errors",
			Details: err.Error(),
		}
	}

	// Config loaded successfully
	absPath, _ := filepath.Abs(configPath)
	return checkResult{
		Name:    "Config",
		Status:  "ok",
		Message: fmt.Sprintf("Loaded from: %s", absPath),
		Details: fmt.Sprintf("Format: %s, Match: %s, Chooser: %s", cfg.Format, cfg.Defaults.Match, cfg.Defaults.Chooser),
	}
}

func (c *DoctorCmd) checkPackagedApp(globals *Globals) checkResult {
	cfg := globals.Config
	if cfg == nil {
		cfg = config.Default()
	}

	app, err := resolvePackagedApp(globals, cfg.Defaults.ResourcesDir, cfg.Defaults.Bundle)
	if err != nil {
		details := hintForPackaging(err)
		var perr *bundle.Error
		if errors.As(err, &perr) {
			details = perr.Detail()
		}
		return checkResult{
			Name:    "Packaged app",
			Status:  "warning",
			Message: err.Error(),
			Details: details,
		}
	}

	return checkResult{
		Name:    "Packaged app",
		Status:  "ok",
		Message: app.Identifier,
		Details: app.Path,
	}
}

// checkSimulators applies the same platform filter and match mode as install.
func (c *DoctorCmd) checkSimulators(ctx context.Context, globals *Globals) checkResult {
	cfg := globals.Config
	if cfg == nil {
		cfg = config.Default()
	}

	match, err := selector.MatcherFor(cfg.Defaults.Match)
	if err != nil {
		return checkResult{
			Name:    "Simulators",
			Status:  "error",
			Message: "Invalid match mode in config",
			Details: err.Error(),
		}
	}

	devices, err := globals.manager().ListPlatformDevices(ctx, cfg.Defaults.Platform)
	if err != nil {
		return checkResult{
			Name:    "Simulators",
			Status:  "error",
			Message: "Failed to list simulators",
			Details: err.Error(),
		}
	}

	if len(devices) == 0 {
		return checkResult{
			Name:    "Simulators",
			Status:  "error",
			Message: noSimulatorsMessage(cfg.Defaults.Platform),
			Details: "Create simulators in Xcode > Window > Devices and Simulators",
		}
	}

	matching := len(selector.Filter(devices, TargetDevice, match))
	if matching == 0 {
		return checkResult{
			Name:    "Simulators",
			Status:  "error",
			Message: fmt.Sprintf("%d available, none matching %s", len(devices), targetDescription(TargetDevice)),
			Details: "Create a matching simulator in Xcode > Window > Devices and Simulators",
		}
	}

	// Group by runtime for summary
	runtimes := make(map[string]int)
	for _, d := range devices {
		runtimes[d.RuntimeIdentifier]++
	}

	var runtimeList []string
	for rt, count := range runtimes {
		runtimeList = append(runtimeList, fmt.Sprintf("%s (%d)", rt, count))
	}
	sort.Strings(runtimeList)

	return checkResult{
		Name:    "Simulators",
		Status:  "ok",
		Message: fmt.Sprintf("%d available, %d matching %s", len(devices), matching, targetDescription(TargetDevice)),
		Details: strings.Join(runtimeList, ", "),
	}
}

func noSimulatorsMessage(platform string) string {
	if platform == "" {
		return "No simulators found"
	}
	return "No " + platform + " simulators found"
}
