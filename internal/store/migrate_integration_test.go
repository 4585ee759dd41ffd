// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

//go:build integration

package store_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/schoolhub/schoolhub/internal/store"
)

var _ = Describe("Migrator", Ordered, func() {
	var (
		ctx       context.Context
		container *postgres.PostgresContainer
		connStr   string
	)

	BeforeAll(func() {
		ctx = context.Background()
		var err error
		container, err = postgres.Run(ctx,
			"postgres:16-alpine",
			postgres.WithDatabase("schoolhub_test"),
			postgres.WithUsername("schoolhub"),
			postgres.WithPassword("schoolhub"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(30*time.Second),
			),
		)
		Expect(err).NotTo(HaveOccurred())

		connStr, err = container.ConnectionString(ctx, "sslmode=disable")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterAll(func() {
		if container != nil {
			_ = container.Terminate(ctx)
		}
	})

	It("connects with retry", func() {
		pool, err := store.Connect(ctx, connStr, 10*time.Second)
		Expect(err).NotTo(HaveOccurred())
		pool.Close()
	})

	It("runs a full up, down, up cycle", func() {
		migrator, err := store.NewMigrator(connStr)
		Expect(err).NotTo(HaveOccurred())
		defer func() { _ = migrator.Close() }()

		st, err := migrator.Status()
		Expect(err).NotTo(HaveOccurred())
		Expect(st.Current).To(BeZero())
		Expect(st.Pending).To(HaveLen(2))

		Expect(migrator.Up()).To(Succeed())
		version, dirty, err := migrator.Version()
		Expect(err).NotTo(HaveOccurred())
		Expect(version).To(Equal(uint(2)))
		Expect(dirty).To(BeFalse())

		Expect(migrator.Up()).To(Succeed(), "second Up is a no-op")

		pool, err := store.Connect(ctx, connStr, 10*time.Second)
		Expect(err).NotTo(HaveOccurred())
		defer pool.Close()

		_, err = pool.Exec(ctx, `INSERT INTO accounts (id, name, email, password_hash) VALUES ('a', 'A', 'A@x.io', 'h')`)
		Expect(err).NotTo(HaveOccurred())
		_, err = pool.Exec(ctx, `INSERT INTO accounts (id, name, email, password_hash) VALUES ('b', 'B', 'a@X.io', 'h')`)
		Expect(err).To(HaveOccurred(), "email uniqueness is case-insensitive")

		Expect(migrator.Down()).To(Succeed())
		pending, err := migrator.PendingMigrations()
		Expect(err).NotTo(HaveOccurred())
		Expect(pending).To(Equal([]uint{1, 2}))

		Expect(migrator.Up()).To(Succeed())
	})
})
