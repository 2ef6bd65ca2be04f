package commands_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/alicebob/miniredis/v2"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/secure-ping/internal/commands"
	"github.com/iliyamo/secure-ping/internal/model"
	"github.com/iliyamo/secure-ping/internal/repository"
)

const okPing = `#!/bin/sh
echo "PING $3: 4 packets transmitted, 4 received"
`

const failingPing = `#!/bin/sh
echo "ping: unknown host $3" >&2
exit 2
`

var _ = Describe("secure-ping", func() {
	var (
		dir    string
		stdout *bytes.Buffer
		stderr *bytes.Buffer
	)

	setenv := func(k, v string) {
		Expect(os.Setenv(k, v)).To(Succeed())
	}

	writeScript := func(name, body string) string {
		path := filepath.Join(dir, name)
		Expect(os.WriteFile(path, []byte(body), 0o755)).To(Succeed())
		return path
	}

	run := func(args ...string) int {
		stdout.Reset()
		stderr.Reset()
		commands.RootCmd.SetArgs(args)
		return commands.Execute()
	}

	BeforeEach(func() {
		for _, k := range []string{
			"PROBE_BINARY", "DB_DRIVER", "DB_PATH", "REDIS_ADDR", "REDIS_HOST", "REDIS_PORT",
			"RABBITMQ_URL", "AMQP_URL", "LOG_LEVEL", "RECENT_PROBES_PREFIX", "RECENT_PROBES_MAX", "RECENT_PROBES_TTL",
		} {
			if v, ok := os.LookupEnv(k); ok {
				DeferCleanup(os.Setenv, k, v)
			} else {
				DeferCleanup(os.Unsetenv, k)
			}
			Expect(os.Unsetenv(k)).To(Succeed())
		}

		dir = GinkgoT().TempDir()
		stdout = &bytes.Buffer{}
		stderr = &bytes.Buffer{}
		commands.RootCmd.SetOut(stdout)
		commands.RootCmd.SetErr(stderr)
		DeferCleanup(func() {
			commands.RootCmd.SetOut(nil)
			commands.RootCmd.SetErr(nil)
			commands.RootCmd.SetArgs(nil)
		})
	})

	Describe("checking one host", func() {
		It("prints the stdout of a successful run", func() {
			setenv("PROBE_BINARY", writeScript("ping", okPing))

			Expect(run("probe", "example.com")).To(Equal(0))
			Expect(stdout.String()).To(Equal("PING example.com: 4 packets transmitted, 4 received\n"))
		})

		It("prints the stderr after Error: and exits 1 when the run fails", func() {
			setenv("PROBE_BINARY", writeScript("ping", failingPing))

			Expect(run("probe", "nope.invalid")).To(Equal(1))
			Expect(stdout.String()).To(Equal("Error: ping: unknown host nope.invalid\n"))
		})

		It("exits 2 without running anything for a rejected host", func() {
			marker := filepath.Join(dir, "ran")
			setenv("PROBE_BINARY", writeScript("ping", "#!/bin/sh\ntouch "+marker+"\n"))

			Expect(run("probe", "localhost; rm -rf /")).To(Equal(2))
			Expect(stderr.String()).To(ContainSubstring("Invalid hostname"))
			Expect(stdout.String()).To(BeEmpty())
			Expect(marker).NotTo(BeAnExistingFile())
		})

		It("requires exactly one host", func() {
			Expect(run("probe")).To(Equal(1))
			Expect(stderr.String()).To(ContainSubstring("accepts 1 arg"))
		})
	})

	Describe("history", func() {
		BeforeEach(func() {
			setenv("PROBE_BINARY", writeScript("ping", okPing))
		})

		It("fails when no store is configured", func() {
			Expect(run("history")).To(Equal(1))
			Expect(stderr.String()).To(ContainSubstring("no probe store configured"))
		})

		Context("with a sqlite store", func() {
			BeforeEach(func() {
				setenv("DB_DRIVER", "sqlite")
				setenv("DB_PATH", filepath.Join(dir, "probes.db"))
			})

			It("lists earlier runs, newest first", func() {
				Expect(run("probe", "first.example")).To(Equal(0))
				time.Sleep(5 * time.Millisecond)
				Expect(run("probe", "second.example")).To(Equal(0))

				Expect(run("history", "-n", "5")).To(Equal(0))
				out := stdout.String()
				Expect(out).To(HavePrefix("STARTED"))
				Expect(out).To(ContainSubstring("HOST"))
				Expect(out).To(MatchRegexp(`(?s)second\.example\s+ok.*first\.example\s+ok`))
			})

			It("honours the limit", func() {
				Expect(run("probe", "first.example")).To(Equal(0))
				time.Sleep(5 * time.Millisecond)
				Expect(run("probe", "second.example")).To(Equal(0))

				Expect(run("history", "-n", "1")).To(Equal(0))
				Expect(stdout.String()).To(ContainSubstring("second.example"))
				Expect(stdout.String()).NotTo(ContainSubstring("first.example"))
			})
		})

		Context("with a redis list", func() {
			var mr *miniredis.Miniredis

			BeforeEach(func() {
				var err error
				mr, err = miniredis.Run()
				Expect(err).NotTo(HaveOccurred())
				DeferCleanup(mr.Close)
				setenv("REDIS_ADDR", mr.Addr())
			})

			It("lists from redis when no sql store is configured", func() {
				Expect(run("probe", "cached.example")).To(Equal(0))

				Expect(run("history", "-n", "5")).To(Equal(0))
				Expect(stdout.String()).To(ContainSubstring("cached.example"))
			})

			It("prefers the sql store when both are configured", func() {
				rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
				DeferCleanup(rdb.Close)
				recent := repository.NewRecentProbes(rdb, "probes", 50, 0)
				Expect(recent.Push(context.Background(), model.ProbeRecord{
					ID: "r-1", Host: "redis-only.example", Succeeded: true, StartedAt: time.Now().UTC(),
				})).To(Succeed())

				setenv("DB_DRIVER", "sqlite")
				setenv("DB_PATH", filepath.Join(dir, "probes.db"))
				Expect(run("probe", "sql.example")).To(Equal(0))

				Expect(run("history")).To(Equal(0))
				Expect(stdout.String()).To(ContainSubstring("sql.example"))
				Expect(stdout.String()).NotTo(ContainSubstring("redis-only.example"))
			})
		})
	})
})
