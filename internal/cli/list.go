package cli

import (
	"context"
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/vburojevic/simlaunch/internal/domain"
	"github.com/vburojevic/simlaunch/internal/output"
	"github.com/vburojevic/simlaunch/internal/selector"
)

// ListCmd lists available simulators and marks those matching the target
type ListCmd struct {
	Device       string `short:"d" help:"Target device identifier, overriding the one built in"`
	Match        string `short:"m" default:"${config_match}" enum:"prefix,exact,contains" help:"How the target is matched against simulators"`
	Platform     string `default:"${config_platform}" help:"Only list simulators of this platform (empty for all)"`
	MatchingOnly bool   `help:"Show only simulators matching the target"`
}

// Run executes the list command
func (c *ListCmd) Run(globals *Globals) error {
	ctx := context.Background()

	match, err := selector.MatcherFor(c.Match)
	if err != nil {
		return outputErrorCommon(globals, "INVALID_FLAGS", err.Error())
	}

	devices, err := globals.manager().ListPlatformDevices(ctx, c.Platform)
	if err != nil {
		return outputErrorCommon(globals, "LIST_FAILED", err.Error(), hintForTooling(err))
	}

	target := c.Device
	if target == "" {
		target = TargetDevice
	}

	var rows []listRow
	for _, d := range devices {
		matches := match(d, target)
		if c.MatchingOnly && !matches {
			continue
		}
		rows = append(rows, listRow{device: d, matches: matches})
	}

	// Output results
	if globals.Format == "ndjson" {
		return c.outputNDJSON(globals, rows)
	}
	return c.outputText(globals, rows, target)
}

type listRow struct {
	device  domain.Device
	matches bool
}

func (c *ListCmd) outputNDJSON(globals *Globals, rows []listRow) error {
	emitter := output.NewEmitter(globals.Stdout)
	for _, r := range rows {
		if err := emitter.Simulator(r.device, r.matches); err != nil {
			return err
		}
	}
	return nil
}

func (c *ListCmd) outputText(globals *Globals, rows []listRow, target string) error {
	if len(rows) == 0 {
		fmt.Fprintln(globals.Stdout, "No simulators found")
		return nil
	}

	table := tablewriter.NewWriter(globals.Stdout)
	table.Header("", "Device", "State", "UDID")

	matched := 0
	for _, r := range rows {
		marker := ""
		if r.matches {
			marker = "*"
			matched++
		}
		if err := table.Append([]string{marker, r.device.Identifier(), output.StateText(string(r.device.State)), r.device.UDID}); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}

	// Print summary
	fmt.Fprintf(globals.Stdout, "\n%d simulator(s), %d matching %s\n", len(rows), matched, targetDescription(target))

	return nil
}
