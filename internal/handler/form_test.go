package handler_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/iliyamo/secure-ping/internal/handler"
)

var _ = Describe("RenderForm", func() {
	It("posts a host field to /ping", func() {
		page := handler.RenderForm()
		Expect(page).To(ContainSubstring(`<form method="POST" action="/ping">`))
		Expect(page).To(ContainSubstring(`name="host"`))
	})

	It("is the same document every time", func() {
		Expect(handler.RenderForm()).To(Equal(handler.RenderForm()))
	})
})
