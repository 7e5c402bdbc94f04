package main

import "github.com/Bitlatte/quire/cmd"

func main() {
	cmd.Execute()
}
