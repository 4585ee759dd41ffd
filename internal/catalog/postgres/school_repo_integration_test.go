// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

//go:build integration

package postgres_test

import (
	"context"

	"github.com/oklog/ulid/v2"
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/schoolhub/schoolhub/internal/catalog"
	"github.com/schoolhub/schoolhub/internal/catalog/postgres"
)

var _ = Describe("SchoolRepository", func() {
	var (
		ctx context.Context
		svc *catalog.Service
	)

	BeforeEach(func() {
		ctx = context.Background()
		_, err := testPool.Exec(ctx, `DELETE FROM schools`)
		Expect(err).NotTo(HaveOccurred())

		svc, err = catalog.NewService(postgres.NewSchoolRepository(testPool), nil)
		Expect(err).NotTo(HaveOccurred())

		report, err := svc.Import(ctx, []catalog.School{
			{Name: "Lincoln High", City: "Springfield", Type: "public"},
			{Name: "Adams Academy", City: "Shelbyville", Type: "private"},
			{Name: "Zephyr Charter", City: "Springfield", Type: "charter"},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(report.Created).To(Equal(3))
	})

	names := func(page catalog.Page) []string {
		out := make([]string, 0, len(page.Schools))
		for _, s := range page.Schools {
			out = append(out, s.Name)
		}
		return out
	}

	It("sorts by name in both directions", func() {
		page, err := svc.List(ctx, catalog.ListQuery{})
		Expect(err).NotTo(HaveOccurred())
		Expect(names(page)).To(Equal([]string{"Adams Academy", "Lincoln High", "Zephyr Charter"}))
		Expect(page.Total).To(Equal(3))

		page, err = svc.List(ctx, catalog.ListQuery{Sort: catalog.SortNameDesc})
		Expect(err).NotTo(HaveOccurred())
		Expect(names(page)).To(Equal([]string{"Zephyr Charter", "Lincoln High", "Adams Academy"}))
	})

	It("filters by city case-insensitively and by type", func() {
		page, err := svc.List(ctx, catalog.ListQuery{City: "SPRINGFIELD", Type: "charter"})
		Expect(err).NotTo(HaveOccurred())
		Expect(names(page)).To(Equal([]string{"Zephyr Charter"}))
		Expect(page.Total).To(Equal(1))
	})

	It("pages results and keeps the total", func() {
		page, err := svc.List(ctx, catalog.ListQuery{Limit: 2, Offset: 2})
		Expect(err).NotTo(HaveOccurred())
		Expect(names(page)).To(Equal([]string{"Zephyr Charter"}))
		Expect(page.Total).To(Equal(3))

		page, err = svc.List(ctx, catalog.ListQuery{Limit: 2, Offset: 10})
		Expect(err).NotTo(HaveOccurred())
		Expect(page.Schools).To(BeEmpty())
		Expect(page.Total).To(Equal(3))
	})

	It("updates on re-import instead of duplicating", func() {
		report, err := svc.Import(ctx, []catalog.School{
			{Name: "lincoln high", City: "springfield", Type: "public", Website: "https://lincoln.example.edu"},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(report.Updated).To(Equal(1))

		page, err := svc.List(ctx, catalog.ListQuery{City: "Springfield", Sort: catalog.SortName})
		Expect(err).NotTo(HaveOccurred())
		Expect(page.Total).To(Equal(2))
		Expect(page.Schools[0].Website).To(Equal("https://lincoln.example.edu"))

		got, err := svc.Get(ctx, page.Schools[0].ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Name).To(Equal("Lincoln High"))
		Expect(got.UpdatedAt).To(BeTemporally(">=", got.CreatedAt))
	})

	It("reports unknown ids as not found", func() {
		_, err := svc.Get(ctx, ulid.Make())
		Expect(err).To(HaveOccurred())
	})
})
