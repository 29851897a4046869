package main

import "github.com/gallerops/dwpipe/cmd"

func main() {
	cmd.Execute()
}
