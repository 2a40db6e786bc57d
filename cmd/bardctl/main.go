package main

import "github.com/leandrodaf/autobard/cmd/bardctl/cmd"

func main() {
	cmd.Execute()
}
