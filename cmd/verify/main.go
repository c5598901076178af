package main

import (
	"flag"
	"fmt"
	"os"

	"randomcarnegie.app/internal/persistence/export"
	persistlog "randomcarnegie.app/internal/persistence/log"
	"randomcarnegie.app/internal/setup"
)

func main() {
	var (
		requestsDir = flag.String("requests", "", "request log dir containing requests-*.jsonl.zst")
		exportPath  = flag.String("export", "", "path to a "+export.Ext+" file")
	)
	flag.Parse()

	if *requestsDir == "" && *exportPath == "" {
		fmt.Fprintln(os.Stderr, "missing -requests or -export")
		os.Exit(2)
	}

	if *exportPath != "" {
		f, err := verifyExport(*exportPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "verify export:", err)
			os.Exit(1)
		}
		fmt.Printf("export ok: seed=%s digest=%s\n", f.Header.Seed, f.Header.Digest)
	}

	if *requestsDir != "" {
		files, err := persistlog.ListRequestFiles(*requestsDir)
		if err != nil {
			fmt.Fprintln(os.Stderr, "list requests:", err)
			os.Exit(1)
		}
		if len(files) == 0 {
			fmt.Fprintln(os.Stderr, "no request files found in", *requestsDir)
			os.Exit(1)
		}
		var st stats
		for _, path := range files {
			if err := verifyRequests(path, &st); err != nil {
				fmt.Fprintln(os.Stderr, "verify:", err)
				os.Exit(1)
			}
		}
		fmt.Printf("requests ok: checked=%d rejected=%d files=%d\n", st.checked, st.rejected, len(files))
	}
}

type stats struct {
	checked  int
	rejected int
}

// verifyRequests regenerates every served request in path and compares
// digests. Rejected requests only need to stay rejected.
func verifyRequests(path string, st *stats) error {
	return persistlog.ReadRequests(path, func(e persistlog.RequestEntry) error {
		if e.Code != "" {
			st.rejected++
			return nil
		}
		s, err := setup.Generate(e.Seed, e.Options)
		if err != nil {
			return fmt.Errorf("req %s seed %s: %w", e.ReqID, setup.FormatSeed(e.Seed), err)
		}
		if s.Digest != e.Digest {
			return fmt.Errorf("digest mismatch for req %s seed %s: got=%s want=%s", e.ReqID, setup.FormatSeed(e.Seed), s.Digest, e.Digest)
		}
		st.checked++
		return nil
	})
}

func verifyExport(path string) (export.FileV1, error) {
	f, err := export.Read(path)
	if err != nil {
		return f, err
	}
	stored, err := f.Setup.ComputeDigest()
	if err != nil {
		return f, err
	}
	if stored != f.Setup.Digest || stored != f.Header.Digest {
		return f, fmt.Errorf("stored setup does not match its digest")
	}
	s, err := setup.Generate(f.Setup.Seed, f.Setup.Options)
	if err != nil {
		return f, err
	}
	if s.Digest != f.Header.Digest {
		return f, fmt.Errorf("digest mismatch: got=%s want=%s", s.Digest, f.Header.Digest)
	}
	return f, nil
}
