package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/pterm/pterm"
)

var (
	SuccessColorFG = pterm.FgLightGreen
	SuccessStyleBG = pterm.NewStyle(pterm.BgLightGreen, pterm.FgBlack)
	WarnColorFG    = pterm.FgYellow
	WarnStyleBG    = pterm.NewStyle(pterm.BgYellow, pterm.FgBlack)
	ErrorColorFG   = pterm.FgRed
	ErrorStyleBG   = pterm.NewStyle(pterm.BgRed, pterm.FgWhite)
	InfoColorFG    = SuccessColorFG
	InfoStyleBG    = SuccessStyleBG
)

// displayICE displays an internal compiler error message.
func displayICE(message string) {
	fmt.Print("\n")
	ErrorStyleBG.Print("Internal Compiler Error")
	ErrorColorFG.Println(" " + message)
	fmt.Print("This error was not supposed to happen: the compiler has a bug.\n\n")
}

// displayFatal displays a fatal error message.
func displayFatal(message string) {
	ErrorStyleBG.Print("Fatal Error")
	ErrorColorFG.Println(" " + message)
}

// displayCompileError displays a compilation error.  Positions are not
// tracked so only the file and the message are printed.
func displayCompileError(reprPath, category, message string) {
	fmt.Print("\n-- ")
	ErrorStyleBG.Print(category + " Error")
	fmt.Print(" ")
	InfoColorFG.Println(reprPath)
	fmt.Println(message)
}

// displayStdError displays a standard Go error.
func displayStdError(reprPath string, err error) {
	fmt.Print("\n-- ")
	ErrorStyleBG.Print("Error")
	fmt.Print(" ")
	InfoColorFG.Println(reprPath)
	fmt.Println(err)
}

// displayWarning displays a buffered warning.
func displayWarning(message string) {
	WarnStyleBG.Print("Warning")
	WarnColorFG.Println(" " + message)
}

// -----------------------------------------------------------------------------

// phaseSpinner stores the current phase spinner
var phaseSpinner *pterm.SpinnerPrinter
var currentPhase string
var phaseStartTime time.Time

const maxPhaseLength = len("Generating")

// ReportBeginPhase displays the beginning of a compilation phase.  Phases are
// only displayed at the verbose log level.
func ReportBeginPhase(phase string) {
	rep.m.Lock()
	defer rep.m.Unlock()

	if rep.logLevel < LogLevelVerbose {
		return
	}

	displayEndPhase(true)

	currentPhase = phase
	phaseText := phase + "..." + strings.Repeat(" ", maxPhaseLength-len(phase)+2)
	phaseSpinner = pterm.DefaultSpinner.WithStyle(pterm.NewStyle(InfoColorFG))

	phaseSpinner.SuccessPrinter = &pterm.PrefixPrinter{
		MessageStyle: pterm.NewStyle(pterm.FgDefault),
		Prefix: pterm.Prefix{
			Style: SuccessStyleBG,
			Text:  "Done",
		},
	}

	phaseSpinner.FailPrinter = &pterm.PrefixPrinter{
		MessageStyle: pterm.NewStyle(pterm.FgDefault),
		Prefix: pterm.Prefix{
			Style: ErrorStyleBG,
			Text:  "Fail",
		},
	}

	phaseSpinner.Start(phaseText)
	phaseStartTime = time.Now()
}

// ReportEndPhase marks the current phase as successfully completed.
func ReportEndPhase() {
	rep.m.Lock()
	defer rep.m.Unlock()

	displayEndPhase(true)
}

// displayEndPhase displays the end of a compilation phase
func displayEndPhase(success bool) {
	if phaseSpinner != nil {
		if success {
			phaseSpinner.Success(
				currentPhase+strings.Repeat(" ", maxPhaseLength-len(currentPhase)+2),
				fmt.Sprintf("(%.3fs)", time.Since(phaseStartTime).Seconds()),
			)
		} else {
			phaseSpinner.Fail(currentPhase + strings.Repeat(" ", maxPhaseLength-len(currentPhase)+2))
		}

		phaseSpinner = nil
	}
}

// ReportCompilationFinished displays the buffered warnings and the closing
// message of compilation.
func ReportCompilationFinished(outputPath string) {
	rep.m.Lock()
	defer rep.m.Unlock()

	displayEndPhase(rep.errorCount == 0)

	if rep.logLevel >= LogLevelWarn {
		for _, warning := range rep.warnings {
			displayWarning(warning)
		}
	}

	if rep.logLevel < LogLevelVerbose {
		return
	}

	fmt.Print("\n")
	if rep.errorCount == 0 {
		SuccessColorFG.Print("All done! ")
		fmt.Print("output written to ")
		InfoColorFG.Println(outputPath)
	} else {
		ErrorColorFG.Print("Oh no! ")
		if rep.errorCount == 1 {
			fmt.Println("(1 error)")
		} else {
			fmt.Printf("(%d errors)\n", rep.errorCount)
		}
	}
}
