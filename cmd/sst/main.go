/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package main

import (
	serial "github.com/allbin/go-serial-stress"
	"github.com/allbin/go-serial-stress/cmd"
)

func main() {
	if serial.RunWorker() {
		return
	}
	cmd.Execute()
}
