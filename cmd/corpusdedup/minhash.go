package main

import (
	"github.com/spf13/cobra"

	"github.com/nao1215/corpusdedup/internal/model"
)

// NewMinHashCmd creates the minhash command.
func NewMinHashCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "minhash [inputs...]",
		Short: "Remove near-duplicate documents with MinHash and LSH",
		Long: `MinHash shingles every document into word n-grams, computes a MinHash
signature and splits it into LSH bands. Documents are admitted in input
order: a document sharing a band with an earlier admitted document is
dropped, and only admitted documents are written to the output directory.

With --verify, a document sharing a band is only dropped when its estimated
Jaccard similarity to an admitted document reaches --threshold.

--num-hashes must be divisible by --num-bands. The default 100 hashes in 10
bands of 10 rows detect pairs with a similarity of about 0.8 and above.

Examples:
  # Drop near-duplicate documents
  corpusdedup minhash -o dedup/ corpus/

  # Stricter detection with verification
  corpusdedup minhash --num-hashes 128 --num-bands 16 --verify -t 0.9 -o dedup/ corpus/

  # Extract text from HTML pages first and save the run
  corpusdedup minhash --extract-html readability --save-history -o dedup/ pages/`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMode(cmd, args, model.ModeMinHash)
		},
	}

	addCorpusFlags(cmd)
	addMinHashFlags(cmd)

	return cmd
}
