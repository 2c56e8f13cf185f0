package main

import (
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/robinjoseph08/golib/logger"
	"github.com/shishobooks/catalog/pkg/identifiers"
)

func main() {
	log := logger.New()

	var opts struct {
		Type string `short:"t" long:"type" description:"The identifier type; detected from the value when omitted"`
	}

	args, err := flags.Parse(&opts)
	if err != nil {
		log.Err(err).Fatal("flags parse error")
	}

	if len(args) == 0 {
		fmt.Println("go run ./cmd/scripts/debug/identify [--type isbn13] <value>...")
		os.Exit(1)
	}

	for _, value := range args {
		t := identifiers.Type(opts.Type)
		detected := false
		if t == "" {
			var ok bool
			t, ok = identifiers.DetectType(value)
			if !ok {
				fmt.Printf("%s: unrecognized\n", value)
				continue
			}
			detected = true
		} else if !identifiers.IsValidType(opts.Type) {
			log.Fatal("unknown identifier type", logger.Data{"type": opts.Type, "valid": identifiers.Types})
		}

		normalized := identifiers.Normalize(t, value)
		fmt.Printf("%s: type=%s detected=%v normalized=%s valid=%v\n", value, t, detected, normalized, identifiers.Validate(t, normalized))
	}
}
