package storage_test

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/frahmantamala/leave-request/internal"
	"github.com/frahmantamala/leave-request/internal/storage"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
)

var _ = Describe("Store", func() {
	var (
		store *storage.Store
		ctx   context.Context
		seed  internal.DefaultUserConfig
	)

	BeforeEach(func() {
		var err error
		ctx = context.Background()
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

		store, err = storage.Open(internal.DatabaseConfig{
			Driver: "sqlite",
			Source: filepath.Join(GinkgoT().TempDir(), "leave.db"),
		}, logger)
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(store.Close)

		seed = internal.DefaultUserConfig{Email: "admin@example.com", Password: "s3cret-pass"}
	})

	countRows := func(table string) int {
		conn, err := store.Conn(ctx)
		Expect(err).NotTo(HaveOccurred())
		defer conn.Close()

		var n int
		Expect(conn.GetContext(ctx, &n, "SELECT COUNT(1) FROM "+table)).To(Succeed())
		return n
	}

	tableNames := func() []string {
		conn, err := store.Conn(ctx)
		Expect(err).NotTo(HaveOccurred())
		defer conn.Close()

		var names []string
		Expect(conn.SelectContext(ctx, &names,
			"SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name")).To(Succeed())
		return names
	}

	Describe("Initialize", func() {
		It("should create both tables", func() {
			Expect(store.Initialize(ctx, seed)).To(Succeed())
			Expect(tableNames()).To(ContainElements("leave_applications", "users"))
		})

		It("should be idempotent across repeated calls", func() {
			Expect(store.Initialize(ctx, seed)).To(Succeed())
			first := tableNames()

			for i := 0; i < 4; i++ {
				Expect(store.Initialize(ctx, seed)).To(Succeed())
			}

			Expect(tableNames()).To(Equal(first))
			Expect(countRows("users")).To(Equal(1))
		})

		It("should store a bcrypt hash instead of the plaintext password", func() {
			Expect(store.Initialize(ctx, seed)).To(Succeed())

			conn, err := store.Conn(ctx)
			Expect(err).NotTo(HaveOccurred())
			defer conn.Close()

			var hash string
			Expect(conn.GetContext(ctx, &hash, "SELECT password FROM users WHERE email = ?", seed.Email)).To(Succeed())
			Expect(hash).NotTo(Equal(seed.Password))
			Expect(bcrypt.CompareHashAndPassword([]byte(hash), []byte(seed.Password))).To(Succeed())
		})

		It("should skip seeding when no default user is configured", func() {
			Expect(store.Initialize(ctx, internal.DefaultUserConfig{})).To(Succeed())
			Expect(countRows("users")).To(Equal(0))
		})

		It("should reject a default user without a password", func() {
			err := store.Initialize(ctx, internal.DefaultUserConfig{Email: "admin@example.com"})
			Expect(err).To(HaveOccurred())
			Expect(internal.IsType(err, internal.ErrorTypeConfiguration)).To(BeTrue())
		})
	})

	Describe("SeedUser", func() {
		BeforeEach(func() {
			Expect(store.Migrate(ctx, false)).To(Succeed())
		})

		It("should report whether a row was created", func() {
			created, err := store.SeedUser(ctx, "a@example.com", "pw")
			Expect(err).NotTo(HaveOccurred())
			Expect(created).To(BeTrue())

			created, err = store.SeedUser(ctx, "a@example.com", "other")
			Expect(err).NotTo(HaveOccurred())
			Expect(created).To(BeFalse())
			Expect(countRows("users")).To(Equal(1))
		})
	})

	Describe("Migrate", func() {
		It("should roll back the latest migration", func() {
			Expect(store.Migrate(ctx, false)).To(Succeed())
			Expect(store.Migrate(ctx, true)).To(Succeed())
			Expect(tableNames()).NotTo(ContainElement("leave_applications"))
			Expect(tableNames()).To(ContainElement("users"))
		})
	})

	Describe("Conn", func() {
		It("should release the connection so later callers are not blocked", func() {
			Expect(store.Migrate(ctx, false)).To(Succeed())
			for i := 0; i < 3; i++ {
				Expect(countRows("users")).To(Equal(0))
			}
			Expect(store.SQL().PingContext(ctx)).To(Succeed())
		})
	})

	Describe("Open", func() {
		It("should reject unknown drivers with a configuration error", func() {
			_, err := storage.Open(internal.DatabaseConfig{Driver: "oracle", Source: "x"}, slog.Default())
			Expect(internal.IsType(err, internal.ErrorTypeConfiguration)).To(BeTrue())
		})
	})
})
