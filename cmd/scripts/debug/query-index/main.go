package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/robinjoseph08/golib/logger"
	"github.com/shishobooks/catalog/pkg/models"
	"github.com/shishobooks/catalog/pkg/search"
)

func main() {
	ctx := context.Background()
	log := logger.New()

	var opts struct {
		Index string `short:"i" long:"index" required:"true" description:"The path to the search index directory"`
		Kind  string `short:"k" long:"kind" default:"book" description:"The kind of entity to search"`
		Limit int    `short:"l" long:"limit" default:"10" description:"The maximum number of hits to print"`
	}

	args, err := flags.Parse(&opts)
	if err != nil {
		log.Err(err).Fatal("flags parse error")
	}

	if len(args) != 1 {
		fmt.Println("go run ./cmd/scripts/debug/query-index --index <path> [--kind author] <text>")
		os.Exit(1)
	}

	index, err := search.OpenBleveIndex(opts.Index)
	if err != nil {
		log.Err(err).Fatal("index open error")
	}
	defer index.Close()

	count, err := index.Count()
	if err != nil {
		log.Err(err).Fatal("index count error")
	}

	svc := search.NewService(index)
	var res *search.Results
	if models.Kind(opts.Kind) == models.KindBook {
		res, err = svc.SearchBooks(ctx, search.BookQuery{Keywords: args[0], Page: 1})
	} else {
		res, err = svc.SearchKind(ctx, models.Kind(opts.Kind), args[0], opts.Limit)
	}
	if err != nil {
		log.Err(err).Fatal("search error")
	}

	fmt.Printf("Documents: %d\nMatches: %d\n", count, res.Total)
	for i, hit := range res.Hits {
		if i >= opts.Limit {
			break
		}
		fmt.Printf("%2d. %s:%s (%.3f)\n", i+1, hit.Kind, hit.PublicID, hit.Score)
	}
}
