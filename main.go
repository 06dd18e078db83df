package main

import "github.com/metal-toolbox/xapictl/cmd"

func main() {
	cmd.Execute()
}
