package accounts

import "github.com/greenbooks-dev/greenbooks/internal/model"

// Baseline account codes the engines post against.
const (
	CodeCash                    = "1010"
	CodeAccountsReceivable      = "1200"
	CodePrepaidExpenses         = "1300"
	CodeVATInput                = "1400"
	CodeEquipment               = "1500"
	CodeAccumulatedDepreciation = "1510"
	CodeAccountsPayable         = "2010"
	CodeSalesTaxPayable         = "2100"
	CodeVATOutput               = "2110"
	CodeCustomerCredits         = "2200"
	CodeUnearnedRevenue         = "2300"
	CodeOwnersEquity            = "3010"
	CodeRetainedEarnings        = "3200"
	CodeServiceRevenue          = "4010"
	CodeProductRevenue          = "4020"
	CodeGeneralExpense          = "5010"
	CodeSoftwareExpense         = "5020"
	CodeOfficeSupplies          = "5030"
	CodeProfessionalServices    = "5040"
	CodeDepreciationExpense     = "5600"
)

// CoreEntry describes one baseline account.
type CoreEntry struct {
	Code string
	Name string
	Type model.AccountType
}

// CoreChart returns the baseline chart of accounts seeded for every tenant.
func CoreChart() []CoreEntry {
	return []CoreEntry{
		{CodeCash, "Cash", model.AccountTypeAsset},
		{CodeAccountsReceivable, "Accounts Receivable", model.AccountTypeAsset},
		{CodePrepaidExpenses, "Prepaid Expenses", model.AccountTypeAsset},
		{CodeVATInput, "VAT Input", model.AccountTypeAsset},
		{CodeEquipment, "Equipment", model.AccountTypeAsset},
		{CodeAccumulatedDepreciation, "Accumulated Depreciation", model.AccountTypeAsset},
		{CodeAccountsPayable, "Accounts Payable", model.AccountTypeLiability},
		{CodeSalesTaxPayable, "Sales Tax Payable", model.AccountTypeLiability},
		{CodeVATOutput, "VAT Output", model.AccountTypeLiability},
		{CodeCustomerCredits, "Customer Credits Payable", model.AccountTypeLiability},
		{CodeUnearnedRevenue, "Unearned Revenue", model.AccountTypeLiability},
		{CodeOwnersEquity, "Owner's Equity", model.AccountTypeEquity},
		{CodeRetainedEarnings, "Retained Earnings", model.AccountTypeEquity},
		{CodeServiceRevenue, "Service Revenue", model.AccountTypeRevenue},
		{CodeProductRevenue, "Product Revenue", model.AccountTypeRevenue},
		{CodeGeneralExpense, "General Expense", model.AccountTypeExpense},
		{CodeSoftwareExpense, "Software & Subscriptions", model.AccountTypeExpense},
		{CodeOfficeSupplies, "Office Supplies", model.AccountTypeExpense},
		{CodeProfessionalServices, "Professional Services", model.AccountTypeExpense},
		{CodeDepreciationExpense, "Depreciation Expense", model.AccountTypeExpense},
	}
}
