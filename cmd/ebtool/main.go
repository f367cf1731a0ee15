// Command ebtool encodes, decodes and inspects valence-coded edgebreaker
// traversals described by YAML trace files.
package main

func main() {
	Execute()
}
