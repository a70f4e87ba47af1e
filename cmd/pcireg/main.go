// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

// pcireg lists PCI devices and reads or writes their registers through sysfs.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/ironcore-dev/pci-utils/pciutils/device"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/alecthomas/kingpin.v2"
)

type accessArgs struct {
	target    *target
	offset    *string
	width     *string
	unchecked *bool
}

type cli struct {
	app       *kingpin.Application
	sysfsRoot *string
	verbosity *int

	list        *kingpin.CmdClause
	listIDs     *[]string
	listVendors *[]string
	listClasses *[]string

	show        *kingpin.CmdClause
	showAddress *string

	read     *kingpin.CmdClause
	readArgs accessArgs

	write      *kingpin.CmdClause
	writeArgs  accessArgs
	writeValue *string

	dump       *kingpin.CmdClause
	dumpTarget *target
	dumpOffset *string
	dumpLength *string
}

func newCLI() *cli {
	c := &cli{}
	c.app = kingpin.New("pcireg", "Inspect PCI devices and access their configuration space and resources.")
	c.sysfsRoot = c.app.Flag("sysfs", "Mount point of sysfs. Defaults to $"+device.SysfsRootEnv+" or "+device.DefaultSysfsRoot).
		Default(device.RootFromEnv()).String()
	c.verbosity = c.app.Flag("verbose", "Increase log verbosity, may be repeated").Short('v').Counter()

	c.list = c.app.Command("list", "List PCI devices")
	c.listIDs = c.list.Flag("id", "Only devices with this vendor:device id").Strings()
	c.listVendors = c.list.Flag("vendor", "Only devices of this vendor (hex)").Strings()
	c.listClasses = c.list.Flag("class", "Only devices of this class code (hex)").Strings()

	c.show = c.app.Command("show", "Show the identity of a PCI device")
	c.showAddress = c.show.Arg("address", "PCI address [[DDDD:]BB:]SS[.F]").Required().String()

	c.read = c.app.Command("read", "Read a register")
	c.readArgs = addAccess(c.read)

	c.write = c.app.Command("write", "Write a register")
	c.writeArgs = addAccess(c.write)
	c.writeValue = c.write.Arg("value", "Value to write").Required().String()

	c.dump = c.app.Command("dump", "Hex dump a register range")
	c.dumpTarget = addTarget(c.dump)
	c.dumpOffset = c.dump.Flag("offset", "First offset to dump").Default("0").String()
	c.dumpLength = c.dump.Flag("length", "Number of bytes to dump").Default("0x40").String()

	return c
}

func addAccess(cmd *kingpin.CmdClause) accessArgs {
	return accessArgs{
		target:    addTarget(cmd),
		offset:    cmd.Arg("offset", "Register offset").Required().String(),
		width:     cmd.Flag("width", "Access width in bits").Default("32").Enum("8", "16", "32"),
		unchecked: cmd.Flag("unchecked", "Skip alignment, bounds and value checks").Bool(),
	}
}

func newLogger(verbosity int) (logr.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.Level(-verbosity))
	cfg.DisableStacktrace = true

	zapLog, err := cfg.Build()
	if err != nil {
		return logr.Logger{}, fmt.Errorf("failed to build logger: %w", err)
	}
	return zapr.NewLogger(zapLog), nil
}

// run parses args and executes the selected command. A nil newLog builds the
// default zap logger.
func (c *cli) run(args []string, out io.Writer, newLog func(int) (logr.Logger, error)) error {
	command, err := c.app.Parse(args)
	if err != nil {
		return err
	}

	if newLog == nil {
		newLog = newLogger
	}
	log, err := newLog(*c.verbosity)
	if err != nil {
		return err
	}

	bus := device.NewBus(log, device.Options{SysfsRoot: *c.sysfsRoot})

	switch command {
	case c.list.FullCommand():
		return c.runList(out, bus)
	case c.show.FullCommand():
		return runShow(out, bus, *c.showAddress)
	case c.read.FullCommand():
		return runRead(out, bus, c.readArgs)
	case c.write.FullCommand():
		return runWrite(bus, c.writeArgs, *c.writeValue)
	case c.dump.FullCommand():
		return runDump(out, bus, c.dumpTarget, *c.dumpOffset, *c.dumpLength)
	}
	return fmt.Errorf("unknown command %q", command)
}

func main() {
	if err := newCLI().run(os.Args[1:], os.Stdout, nil); err != nil {
		fmt.Fprintln(os.Stderr, "pcireg:", err)
		os.Exit(1)
	}
}
