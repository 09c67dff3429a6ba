package main

import "github.com/frahmantamala/leave-request/cmd"

func main() {
	cmd.Execute()
}
