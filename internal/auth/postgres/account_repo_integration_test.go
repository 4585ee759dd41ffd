// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/schoolhub/schoolhub/internal/auth"
	"github.com/schoolhub/schoolhub/internal/auth/postgres"
)

var _ = Describe("AccountRepository", func() {
	var (
		ctx  context.Context
		repo *postgres.AccountRepository
	)

	BeforeEach(func() {
		ctx = context.Background()
		repo = postgres.NewAccountRepository(testPool)
		_, err := testPool.Exec(ctx, `DELETE FROM accounts`)
		Expect(err).NotTo(HaveOccurred())
	})

	newAccount := func(email string) *auth.Account {
		account, err := auth.NewAccount("Test User", email, "$2a$04$hash", time.Now().Truncate(time.Microsecond))
		Expect(err).NotTo(HaveOccurred())
		return account
	}

	It("round-trips an account", func() {
		account := newAccount("ada@example.com")
		Expect(repo.Create(ctx, account)).To(Succeed())

		byID, err := repo.GetByID(ctx, account.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(byID.Email).To(Equal("ada@example.com"))
		Expect(byID.Role).To(Equal(auth.RoleStudent))
		Expect(byID.CreatedAt).To(BeTemporally("==", account.CreatedAt))

		byEmail, err := repo.GetByEmail(ctx, "ADA@Example.com")
		Expect(err).NotTo(HaveOccurred())
		Expect(byEmail.ID).To(Equal(account.ID))
	})

	It("reports missing accounts as not found", func() {
		_, err := repo.GetByID(ctx, ulid.Make())
		Expect(err).To(MatchError(auth.ErrNotFound))

		_, err = repo.GetByEmail(ctx, "nobody@example.com")
		Expect(err).To(MatchError(auth.ErrNotFound))
	})

	It("rejects a duplicate email regardless of case", func() {
		Expect(repo.Create(ctx, newAccount("grace@example.com"))).To(Succeed())

		dup := newAccount("grace@example.com")
		dup.Email = "GRACE@example.com"
		Expect(repo.Create(ctx, dup)).To(MatchError(auth.ErrIdentityTaken))
	})

	It("lets exactly one concurrent registration win", func() {
		const n = 8
		var (
			wg    sync.WaitGroup
			mu    sync.Mutex
			ok    int
			taken int
		)
		for range n {
			wg.Add(1)
			go func() {
				defer GinkgoRecover()
				defer wg.Done()
				err := repo.Create(ctx, newAccount("race@example.com"))
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					ok++
				case errors.Is(err, auth.ErrIdentityTaken):
					taken++
				}
			}()
		}
		wg.Wait()
		Expect(ok).To(Equal(1))
		Expect(taken).To(Equal(n - 1))
	})
})
