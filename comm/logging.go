package comm

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
)

var settings = &struct {
	quiet   bool
	verbose bool
	json    bool
	panic   bool
}{}

// Configure sets all logging options in one go
func Configure(quiet, verbose, json, panic bool) {
	settings.quiet = quiet
	settings.verbose = verbose
	settings.json = json
	settings.panic = panic
}

// JSON returns true when output is machine-readable
func JSON() bool {
	return settings.json
}

type jsonMessage map[string]interface{}

const (
	opSign   = "•"
	statSign = "✓"
)

// Opf prints a formatted string informing the user on what operation we're doing
func Opf(format string, args ...interface{}) {
	Logf("%s %s", opSign, fmt.Sprintf(format, args...))
}

// Statf prints a formatted string informing the user of how things went
func Statf(format string, args ...interface{}) {
	Logf("%s %s", statSign, fmt.Sprintf(format, args...))
}

// Logf sends a formatted informational message to the client
func Logf(format string, args ...interface{}) {
	Loglf("info", format, args...)
}

// Notice prints a box with important info in it.
// UX style guide: don't abuse it or people will stop reading it.
func Notice(header string, lines []string) {
	if settings.json {
		Logf("notice: %s", header)
		for _, line := range lines {
			Logf("notice: %s", line)
		}
		return
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetAutoFormatHeaders(false)
	table.SetColWidth(60)
	table.SetHeader([]string{header})
	for _, line := range lines {
		table.Append([]string{line})
	}
	table.Render()
}

// Table prints rows under a header. In JSON mode, nothing is printed:
// commands send their results with Result instead.
func Table(header []string, rows [][]string) {
	if settings.json {
		return
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(header)
	for _, row := range rows {
		table.Append(row)
	}
	table.Render()
}

// Debugf messages are like Info messages, but printed only when verbose
func Debugf(format string, args ...interface{}) {
	Loglf("debug", format, args...)
}

// Logl logs a message of a given level
func Logl(level string, msg string) {
	send("log", jsonMessage{
		"message": msg,
		"level":   level,
	})
}

// Loglf logs a formatted message of a given level
func Loglf(level string, format string, args ...interface{}) {
	Logl(level, fmt.Sprintf(format, args...))
}

// Die exits with a non-zero exit code after giving a reason to the client
func Die(msg string) {
	send("error", jsonMessage{
		"message": msg,
	})
}

// Dief is a formatted variant of Die
func Dief(format string, args ...interface{}) {
	Die(fmt.Sprintf(format, args...))
}

// Result sends a result
func Result(value interface{}) {
	send("result", jsonMessage{
		"value": value,
	})
}

type printerFunc func()

func ResultOrPrint(value interface{}, p printerFunc) {
	if settings.json {
		Result(value)
	} else {
		p()
	}
}

var (
	warnColor  = color.New(color.FgYellow)
	errorColor = color.New(color.FgRed, color.Bold)
)

// sends a message to the client
func send(msgType string, obj jsonMessage) {
	if settings.json {
		obj["type"] = msgType
		obj["time"] = time.Now().UTC().Unix()
		if msgType == "log" && obj["level"] == "debug" {
			if settings.quiet || !settings.verbose {
				return
			}
		}

		sendJSON(obj)
		if msgType == "error" {
			os.Exit(1)
		}
		return
	}

	switch msgType {
	case "log":
		switch obj["level"] {
		case "info":
			if !settings.quiet {
				log.Println(obj["message"])
			}
		case "debug":
			if !settings.quiet && settings.verbose {
				log.Println(obj["message"])
			}
		case "warning":
			log.Println(warnColor.Sprintf("warning: %s", obj["message"]))
		default:
			log.Printf("%s: %s\n", obj["level"], obj["message"])
		}
	case "error":
		if settings.panic {
			log.Panicln(obj["message"])
		} else {
			log.Println(errorColor.Sprint(obj["message"]))
			os.Exit(1)
		}
	case "result":
		// don't show outside json mode
	default:
		log.Println(msgType, obj)
	}
}

// sends a JSON-encoded message to the client
func sendJSON(obj jsonMessage) {
	json, _ := json.Marshal(obj)
	fmt.Println(string(json))
}
