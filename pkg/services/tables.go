// Package services implements the SAC resources on top of the record
// engine: filter allow-lists, key shapes, date handling and the business
// rules each table needs before a write.
package services

import (
	"github.com/ekaya-inc/sac-engine/pkg/dates"
	"github.com/ekaya-inc/sac-engine/pkg/models"
)

// Table describes how one resource maps onto its table.
type Table struct {
	// Resource is the name used in logs and audit events.
	Resource string
	Name     string
	// Filters is the allow-list for GET query parameters.
	Filters []string
	// Keys identify a row for merge and delete.
	Keys []string
	// Identity is set when Keys is a single database-generated column.
	Identity string
	OrderBy  string
	// Dates selects the columns run through the date normalizer in both
	// directions; nil disables date handling.
	Dates *dates.Selector
	// StripOnWrite columns are removed from every inbound row.
	StripOnWrite []string
}

var heuristicDates = dates.Heuristic()

var (
	AccountsTable = Table{
		Resource: "accounts",
		Name:     "tblAcctSpecial",
		Filters:  []string{"CustomerNum", "CustomerName", "Stage", "isSubmitted", "ServLevel", "AcctOwner", "BranchName"},
		Keys:     []string{"CustomerNum"},
		Dates:    &heuristicDates,
	}

	PoliciesTable = Table{
		Resource: "policies",
		Name:     "tblPolicies",
		Filters:  []string{"CustomerNum", "PolicyNum", "PolMod"},
		Keys:     []string{"CustomerNum", "PolicyNum", "PolMod"},
		Dates:    &heuristicDates,
	}

	HCMUsersTable = Table{
		Resource: "hcm_users",
		Name:     "tblHCMUsers",
		Filters:  []string{"CustNum", "UserName", "UserEmail", "PK_Number"},
		Keys:     []string{"PK_Number"},
		Identity: "PK_Number",
	}

	AffiliatesTable = Table{
		Resource: "affiliates",
		Name:     "tblAffiliates",
		Filters:  []string{"CustomerNum", "AffiliateName", "PK_Number"},
		Keys:     []string{"PK_Number"},
		Identity: "PK_Number",
	}

	LossRunDistributionTable = Table{
		Resource:     "loss_run_distribution",
		Name:         "tblDistribute_LossRun",
		Filters:      []string{"CustomerNum", "EMailAddress"},
		Keys:         []string{"CustomerNum", "EMailAddress"},
		Dates:        &heuristicDates,
		StripOnWrite: []string{"PK_Number"},
	}

	DeductBillDistributionTable = Table{
		Resource:     "deduct_bill_distribution",
		Name:         "tblDistribute_DeductBill",
		Filters:      []string{"CustomerNum", "EMailAddress"},
		Keys:         []string{"CustomerNum", "EMailAddress"},
		Dates:        &heuristicDates,
		StripOnWrite: []string{"PK_Number"},
	}

	ClaimReviewDistributionTable = Table{
		Resource:     "claim_review_distribution",
		Name:         "tblDistribute_ClaimReview",
		Filters:      []string{"CustomerNum", "EMailAddress"},
		Keys:         []string{"CustomerNum", "AttnTo"},
		Dates:        &heuristicDates,
		StripOnWrite: []string{"PK_Number"},
	}

	LossRunFrequencyTable = frequencyTable("loss_run_frequency", "tblLossRunFrequency")

	ClaimReviewFrequencyTable = frequencyTable("claim_review_frequency", "tblClaimReviewFrequency")

	DeductBillFrequencyTable = frequencyTable("deduct_bill_frequency", "tblDeductBillFrequency")
)

func frequencyTable(resource, name string) Table {
	return Table{
		Resource: resource,
		Name:     name,
		Filters:  []string{"CustomerNum", "MthNum"},
		Keys:     []string{"CustomerNum", "MthNum"},
		OrderBy:  "MthNum",
	}
}

// Tables lists every registered table by resource name.
var Tables = map[string]Table{
	AccountsTable.Resource:                AccountsTable,
	PoliciesTable.Resource:                PoliciesTable,
	HCMUsersTable.Resource:                HCMUsersTable,
	AffiliatesTable.Resource:              AffiliatesTable,
	LossRunDistributionTable.Resource:     LossRunDistributionTable,
	DeductBillDistributionTable.Resource:  DeductBillDistributionTable,
	ClaimReviewDistributionTable.Resource: ClaimReviewDistributionTable,
	LossRunFrequencyTable.Resource:        LossRunFrequencyTable,
	ClaimReviewFrequencyTable.Resource:    ClaimReviewFrequencyTable,
	DeductBillFrequencyTable.Resource:     DeductBillFrequencyTable,
}

// formatOut applies outbound date formatting when the table has dates.
func (t Table) formatOut(rows []*models.Row) []*models.Row {
	if t.Dates == nil {
		return rows
	}
	return dates.FormatRows(rows, *t.Dates)
}

// prepareIn strips write-only columns and normalizes dates on copies of
// the inbound rows.
func (t Table) prepareIn(rows []*models.Row) []*models.Row {
	out := make([]*models.Row, 0, len(rows))
	for _, row := range rows {
		clean := models.WithoutColumns(row, t.StripOnWrite...)
		if t.Dates != nil {
			dates.NormalizeRow(clean, *t.Dates)
		}
		out = append(out, clean)
	}
	return out
}
