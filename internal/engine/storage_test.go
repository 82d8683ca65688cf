package engine

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("LocalStorage", func() {
	var (
		tmpDir  string
		storage Storage
	)

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		var err error
		storage, err = NewLocalStorage(tmpDir)
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("Save", func() {
		var (
			filename string
			saved    string
			err      error
		)

		BeforeEach(func() {
			filename = "page.png"
		})

		JustBeforeEach(func() {
			saved, err = storage.Save(filename, []byte("scratch"))
		})

		It("writes the file into the directory", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(saved).To(Equal("page.png"))
			Expect(filepath.Join(tmpDir, "page.png")).To(BeAnExistingFile())
		})

		When("the name tries to escape the directory", func() {
			BeforeEach(func() {
				filename = "../../escape.png"
			})

			It("keeps only the base name", func() {
				Expect(err).NotTo(HaveOccurred())
				Expect(saved).To(Equal("escape.png"))
				Expect(filepath.Join(tmpDir, "escape.png")).To(BeAnExistingFile())
			})
		})
	})

	Describe("Path", func() {
		It("joins the base path", func() {
			Expect(storage.Path("page.png")).To(Equal(filepath.Join(tmpDir, "page.png")))
		})
	})

	Describe("Delete", func() {
		When("the file exists", func() {
			It("removes it", func() {
				_, err := storage.Save("page.png", []byte("scratch"))
				Expect(err).NotTo(HaveOccurred())
				Expect(storage.Delete("page.png")).To(Succeed())
				Expect(filepath.Join(tmpDir, "page.png")).NotTo(BeAnExistingFile())
			})
		})

		When("the file does not exist", func() {
			It("returns an error", func() {
				Expect(storage.Delete("missing.png")).To(MatchError(ContainSubstring("deleting file")))
			})
		})
	})

	When("the directory does not exist yet", func() {
		It("creates it", func() {
			dir := filepath.Join(tmpDir, "nested", "scratch")
			_, err := NewLocalStorage(dir)
			Expect(err).NotTo(HaveOccurred())
			info, err := os.Stat(dir)
			Expect(err).NotTo(HaveOccurred())
			Expect(info.IsDir()).To(BeTrue())
		})
	})
})
