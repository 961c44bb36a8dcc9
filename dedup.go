package main

import (
	"github.com/rs/zerolog/log"

	"github.com/gentoomaniac/rmqbackup/pkg/dedup"
)

type DedupCmd struct {
	File    string `arg:"" help:"Path of the .jsonl.gz file to deduplicate" type:"path"`
	Inplace bool   `help:"Rewrite the file in place instead of creating a .dedup sibling"`
}

func runDedup(params *DedupCmd) error {
	if _, err := dedup.File(params.File, params.Inplace); err != nil {
		log.Error().Err(err).Str("file", params.File).Msg("dedup failed")
		return err
	}
	return nil
}
