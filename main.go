package main

import "github.gatech.edu/ECEInnovation/RISC-V-Monitor/cmd"

func main() {
	cmd.Execute()
}
