package seed

import (
	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/kalyan-venturemond/venturemond-clientdashboard-sub001/internal/catalog/domain"
	"gorm.io/gorm"
)

// EnsureCatalog inserts the default service offerings when the catalog is
// empty. Existing rows are never touched.
func EnsureCatalog(conn *gorm.DB) error {
	var count int64
	if err := conn.Model(&catalogdomain.Item{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	node, err := snowflake.NewNode(2)
	if err != nil {
		return err
	}

	items := []catalogdomain.Item{
		{
			ID:          node.Generate(),
			Code:        "website-redesign",
			Title:       "Website Redesign",
			Description: "Full redesign of an existing marketing site, up to 12 pages.",
			UnitPrice:   25000000,
			Currency:    "INR",
		},
		{
			ID:          node.Generate(),
			Code:        "brand-identity",
			Title:       "Brand Identity Package",
			Description: "Logo, typography and brand guidelines.",
			UnitPrice:   12000000,
			Currency:    "INR",
		},
		{
			ID:              node.Generate(),
			Code:            "seo-retainer",
			Title:           "SEO Retainer",
			Description:     "Monthly search optimization and reporting.",
			UnitPrice:       4500000,
			Currency:        "INR",
			BillingPeriod:   "monthly",
			SeatsIncluded:   3,
			StorageIncluded: 50,
			StorageUnit:     "GB",
		},
		{
			ID:              node.Generate(),
			Code:            "hosting-pro",
			Title:           "Managed Hosting Pro",
			Description:     "Managed hosting with daily backups and monitoring.",
			UnitPrice:       1500000,
			Currency:        "INR",
			BillingPeriod:   "monthly",
			Trial:           true,
			SeatsIncluded:   5,
			StorageIncluded: 100,
			StorageUnit:     "GB",
		},
		{
			ID:              node.Generate(),
			Code:            "care-plan-annual",
			Title:           "Annual Care Plan",
			Description:     "Yearly maintenance, updates and priority support.",
			UnitPrice:       36000000,
			Currency:        "INR",
			BillingPeriod:   "yearly",
			SeatsIncluded:   10,
			StorageIncluded: 250,
			StorageUnit:     "GB",
		},
	}
	return conn.Create(&items).Error
}
