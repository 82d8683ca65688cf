package ocr

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"
)

var _ = Describe("HTTPSubmitter", func() {
	var (
		server    *ghttp.Server
		submitter *HTTPSubmitter
		file      *SelectedFile
		params    Params
		reply     *Reply
		err       error
	)

	BeforeEach(func() {
		server = ghttp.NewServer()
		submitter = NewHTTPSubmitter(server.URL()+"/ocr", 5*time.Second)
		file = NewSelectedFile("report.pdf", []byte("%PDF-1.4 fake"))
		params = Resolve(file, PSMAuto, Defaults{})
	})

	AfterEach(func() {
		server.Close()
	})

	JustBeforeEach(func() {
		reply, err = submitter.Submit(context.Background(), file, params)
	})

	When("the service succeeds", func() {
		var received map[string]string

		BeforeEach(func() {
			received = map[string]string{}
			server.AppendHandlers(ghttp.CombineHandlers(
				ghttp.VerifyRequest(http.MethodPost, "/ocr"),
				func(w http.ResponseWriter, r *http.Request) {
					defer GinkgoRecover()
					Expect(r.ParseMultipartForm(1 << 20)).To(Succeed())
					for _, key := range []string{"engine", "psm", "lang", "kraken_model"} {
						received[key] = r.FormValue(key)
					}
					f, header, ferr := r.FormFile("file")
					Expect(ferr).NotTo(HaveOccurred())
					defer f.Close()
					data, _ := io.ReadAll(f)
					received["filename"] = header.Filename
					received["file"] = string(data)
				},
				ghttp.RespondWith(http.StatusOK, `{"engine":"tesseract","lang":"lat","text":"Hoc est.\n\n--- page break ---\n\nAliud est.","meta":{"duration_ms":812,"pages":2}}`),
			))
		})

		It("does not return an error", func() {
			Expect(err).NotTo(HaveOccurred())
		})

		It("sends the resolved parameters", func() {
			Expect(received["engine"]).To(Equal("tesseract"))
			Expect(received["psm"]).To(Equal("6"))
			Expect(received["lang"]).To(Equal("lat"))
			Expect(received["kraken_model"]).To(BeEmpty())
		})

		It("sends the file bytes under its name", func() {
			Expect(received["filename"]).To(Equal("report.pdf"))
			Expect(received["file"]).To(Equal("%PDF-1.4 fake"))
		})

		It("decodes the reply", func() {
			Expect(reply.Text).To(Equal("Hoc est." + PageSeparator + "Aliud est."))
			Expect(*reply.Meta.DurationMs).To(BeNumerically("==", 812))
			Expect(*reply.Meta.Pages).To(Equal(2))
		})

		It("issues exactly one request", func() {
			Expect(server.ReceivedRequests()).To(HaveLen(1))
		})
	})

	When("the engine is kraken with a model", func() {
		var model string

		BeforeEach(func() {
			params.Engine = EngineKraken
			params.KrakenModel = "latin.mlmodel"
			server.AppendHandlers(ghttp.CombineHandlers(
				func(w http.ResponseWriter, r *http.Request) {
					model = r.FormValue("kraken_model")
				},
				ghttp.RespondWith(http.StatusOK, `{"text":"x"}`),
			))
		})

		It("sends the model name", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(model).To(Equal("latin.mlmodel"))
		})
	})

	When("the service fails with a detail", func() {
		BeforeEach(func() {
			server.AppendHandlers(ghttp.RespondWith(http.StatusInternalServerError, `{"detail":"engine unavailable"}`))
		})

		It("returns an HTTPError with the detail", func() {
			var httpErr *HTTPError
			Expect(errors.As(err, &httpErr)).To(BeTrue())
			Expect(httpErr.StatusCode).To(Equal(http.StatusInternalServerError))
			Expect(err.Error()).To(Equal("engine unavailable"))
		})

		It("returns no reply", func() {
			Expect(reply).To(BeNil())
		})
	})

	When("the service fails with an unparsable body", func() {
		BeforeEach(func() {
			server.AppendHandlers(ghttp.RespondWith(http.StatusInternalServerError, `Internal Server Error`))
		})

		It("falls back to the status code", func() {
			Expect(err).To(MatchError("HTTP 500"))
		})
	})

	When("the failure body has no detail", func() {
		BeforeEach(func() {
			server.AppendHandlers(ghttp.RespondWith(http.StatusBadGateway, `{"error":"upstream"}`))
		})

		It("falls back to the status code", func() {
			Expect(err).To(MatchError("HTTP 502"))
		})
	})

	When("the success body is malformed", func() {
		BeforeEach(func() {
			server.AppendHandlers(ghttp.RespondWith(http.StatusOK, `not json`))
		})

		It("degrades to empty text", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(reply.Text).To(Equal(""))
		})
	})

	When("the success body lacks text", func() {
		BeforeEach(func() {
			server.AppendHandlers(ghttp.RespondWith(http.StatusOK, `{"meta":{"pages":1}}`))
		})

		It("degrades to empty text", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(reply.Text).To(Equal(""))
			Expect(*reply.Meta.Pages).To(Equal(1))
		})
	})

	When("the service is unreachable", func() {
		BeforeEach(func() {
			url := server.URL()
			server.Close()
			submitter = NewHTTPSubmitter(url+"/ocr", time.Second)
		})

		It("returns a TransportError", func() {
			var transportErr *TransportError
			Expect(errors.As(err, &transportErr)).To(BeTrue())
			Expect(err.Error()).To(HavePrefix("request failed: "))
		})
	})
})

var _ = Describe("NewHTTPSubmitter", func() {
	It("defaults the endpoint", func() {
		Expect(NewHTTPSubmitter("", 0).Endpoint()).To(Equal(DefaultEndpoint))
	})
})
