package main

import "github.com/academictechnexus/mascot-admin/cmd/mascotctl/cmd"

func main() {
	cmd.Execute()
}
