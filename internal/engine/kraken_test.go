package engine

import (
	"context"
	"os"
	"path/filepath"
	"runtime"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// fakeKraken writes a shell script standing in for the kraken CLI. It prints
// its arguments so the test can check them, or fails when asked to.
func fakeKraken(dir, body string) string {
	path := filepath.Join(dir, "kraken")
	script := "#!/bin/sh\n" + body + "\n"
	Expect(os.WriteFile(path, []byte(script), 0755)).To(Succeed())
	return path
}

var _ = Describe("Kraken", func() {
	var (
		binDir     string
		scratchDir string
		storage    *LocalStorage
		opts       Options
		body       string
		text       string
		err        error
	)

	BeforeEach(func() {
		if runtime.GOOS == "windows" {
			Skip("shell scripts are not executable on windows")
		}
		binDir = GinkgoT().TempDir()
		scratchDir = GinkgoT().TempDir()
		var serr error
		storage, serr = NewLocalStorage(scratchDir)
		Expect(serr).NotTo(HaveOccurred())
		opts = Options{}
		body = `printf '%s\n' "$*"`
	})

	JustBeforeEach(func() {
		kraken := NewKraken(fakeKraken(binDir, body), storage)
		text, err = kraken.Recognize(context.Background(), pngBytes(), opts)
	})

	It("runs baseline segmentation and recognition on a scratch file", func() {
		Expect(err).NotTo(HaveOccurred())
		Expect(text).To(MatchRegexp(`^-i .*kraken-\d+-\d+\.png - segment -bl ocr\n$`))
	})

	It("removes the scratch file afterwards", func() {
		entries, rerr := os.ReadDir(scratchDir)
		Expect(rerr).NotTo(HaveOccurred())
		Expect(entries).To(BeEmpty())
	})

	When("a model is given", func() {
		BeforeEach(func() {
			opts.Model = "catmus-medieval.mlmodel"
		})

		It("passes it with -m", func() {
			Expect(text).To(HaveSuffix("ocr -m catmus-medieval.mlmodel\n"))
		})
	})

	When("the tool fails", func() {
		BeforeEach(func() {
			body = `echo "no model found" >&2; exit 1`
		})

		It("includes stderr in the error", func() {
			Expect(err).To(MatchError(ContainSubstring("running kraken")))
			Expect(err).To(MatchError(ContainSubstring("no model found")))
		})
	})
})
