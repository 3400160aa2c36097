package main

import "github.com/lehmann314159/tangocho/cmd"

func main() {
	cmd.Execute()
}
