package main

import "github.com/comalice/beepboop/cmd/beepboop/cmd"

func main() {
	cmd.Execute()
}
