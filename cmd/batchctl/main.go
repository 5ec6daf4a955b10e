// Command batchctl runs and inspects dependency-ordered batch jobs.
package main

import "github.com/dbsmedya/batchctl/cmd/batchctl/cmd"

func main() {
	cmd.Execute()
}
