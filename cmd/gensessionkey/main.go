package main

import (
	"errors"
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"freightportal/internal/crypto"
	"freightportal/internal/files"
)

func main() {
	out := flag.StringP("out", "o", "session.key", "key file to create")
	flag.Parse()

	key := crypto.MustRandom(crypto.MasterKeySize)
	if err := files.WriteMasterKey(*out, key); err != nil {
		if errors.Is(err, files.ErrKeyExists) {
			fmt.Fprintf(os.Stderr, "Error: %s already exists. Refusing to overwrite.\n", *out)
		} else {
			fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", *out, err)
		}
		os.Exit(1)
	}
	fmt.Printf("Session key written to %s\n", *out)
}
