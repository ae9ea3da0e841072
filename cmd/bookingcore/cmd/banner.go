package cmd

import (
	"fmt"
)

const banner = `
     _              _
    / \   _ __ ___ | |__   ___ _ __
   / _ \ | '_ ` + "`" + ` _ \| '_ \ / _ \ '__|
  / ___ \| | | | | | |_) |  __/ |
 /_/   \_\_| |_| |_|_.__/ \___|_|

`

func printBanner() {
	fmt.Printf("\x1b[33m%s\x1b[0m", banner)
	fmt.Printf("\x1b[32m  Amber Rentals booking service - Version %s\x1b[0m\n\n", Version)
}
