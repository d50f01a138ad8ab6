package display

import (
	"fmt"
	"os"
)

// PrintBanner prints the ASCII art banner; colored magenta when enabled.
func PrintBanner(color bool) {
	if color {
		fmt.Fprint(os.Stdout, "\033[1;95m")
	}
	fmt.Fprint(os.Stdout, ` _                    ____        _       _
| |    ___ _ __  ___ | __ )  __ _| |_ ___| |__
| |   / _ \ '_ \/ __||  _ \ / _`+"`"+` | __/ __| '_ \
| |__|  __/ | | \__ \| |_) | (_| | || (__| | | |
|_____\___|_| |_|___/|____/ \__,_|\__\___|_| |_|
`)
	if color {
		fmt.Fprintln(os.Stdout, "\033[0m")
	} else {
		fmt.Fprintln(os.Stdout)
	}
}
