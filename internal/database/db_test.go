package database_test

import (
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/iliyamo/secure-ping/internal/config"
	"github.com/iliyamo/secure-ping/internal/database"
)

var _ = Describe("Open", func() {
	It("opens a sqlite file", func() {
		db, err := database.Open(config.DBConfig{Driver: "sqlite", Path: filepath.Join(GinkgoT().TempDir(), "probes.db")})
		Expect(err).NotTo(HaveOccurred())
		Expect(db.Close()).To(Succeed())
	})

	It("rejects an unknown driver", func() {
		_, err := database.Open(config.DBConfig{Driver: "postgres"})
		Expect(err).To(MatchError(ContainSubstring(`unsupported DB_DRIVER "postgres"`)))
	})

	It("rejects sqlite without a path", func() {
		_, err := database.Open(config.DBConfig{Driver: "sqlite"})
		Expect(err).To(HaveOccurred())
	})
})
