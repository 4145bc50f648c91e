/*
 * cncbrain - Main process.
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	getopt "github.com/pborman/getopt/v2"
	"github.com/peterh/liner"

	config "github.com/rcornwell/cncbrain/config/configparser"
	"github.com/rcornwell/cncbrain/internal/console"
	"github.com/rcornwell/cncbrain/internal/machine"
	logger "github.com/rcornwell/cncbrain/util/logger"
)

var Logger *slog.Logger

// tickInterval is the fixed period of the physical integrator (§4.8).
const tickInterval = 10 * time.Millisecond

func main() {
	optConfig := getopt.StringLong("config", 'c', "cncbrain.cfg", "Configuration file")
	optLogFile := getopt.StringLong("log", 'l', "", "Log file")
	optHelp := getopt.BoolLong("help", 'h', "Help")
	optDebug := getopt.BoolLong("debug", 'd', "Echo debug-level log records to stderr")
	getopt.Parse()

	if *optHelp {
		getopt.Usage()
		os.Exit(0)
	}

	var file *os.File
	if optLogFile != nil && *optLogFile != "" {
		var err error
		file, err = os.Create(*optLogFile)
		if err != nil {
			fmt.Println("can't create log file:", err)
			os.Exit(1)
		}
	}
	programLevel := new(slog.LevelVar)
	programLevel.Set(slog.LevelDebug)
	Logger = slog.New(logger.NewHandler(file, &slog.HandlerOptions{Level: programLevel, AddSource: false}, optDebug))
	slog.SetDefault(Logger)

	Logger.Info("cncbrain started")

	m := machine.New()

	if optConfig != nil && *optConfig != "" {
		if _, err := os.Stat(*optConfig); err == nil {
			if err := config.LoadConfigFile(*optConfig, m); err != nil {
				Logger.Error("loading configuration", "error", err.Error())
				os.Exit(1)
			}
			Logger.Info("configuration loaded", "file", *optConfig)
		} else {
			Logger.Info("no configuration file found, starting with an empty machine", "file", *optConfig)
		}
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	cmdChan := make(chan string)
	quitChan := make(chan struct{})
	go runConsole(cmdChan, quitChan)

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

loop:
	for {
		select {
		case <-sigChan:
			fmt.Println("got quit signal")
			break loop
		case <-quitChan:
			break loop
		case cmdLine := <-cmdChan:
			reply, err := console.Process(cmdLine, m)
			if err != nil {
				fmt.Println("error:", err.Error())
				continue
			}
			if reply != "" {
				fmt.Println(reply)
			}
		case <-ticker.C:
			m.Tick(float64(tickInterval / time.Millisecond))
		}
	}

	Logger.Info("shutting down")
}

// runConsole drives the liner REPL on its own goroutine, forwarding
// completed lines to the tick loop so the Machine is only ever touched
// from one goroutine at a time.
func runConsole(cmdChan chan<- string, quitChan chan<- struct{}) {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)

	for {
		command, err := line.Prompt("cncbrain> ")
		if err == nil {
			line.AppendHistory(command)
			cmdChan <- command
			continue
		}

		if errors.Is(err, liner.ErrPromptAborted) {
			close(quitChan)
			return
		}
		slog.Error("error reading line: " + err.Error())
		close(quitChan)
		return
	}
}
