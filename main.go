package main

import "forum-indexer/cmd"

func main() {
	cmd.Execute()
}
