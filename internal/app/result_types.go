package app

import "purchasing-admin/internal/core"

// ItemListResult is returned by ListItems.
type ItemListResult struct {
	Items []core.Item `json:"items"`
}

// CustomerListResult is returned by ListCustomers.
type CustomerListResult struct {
	Customers []core.Customer `json:"customers"`
}

// PurchaseListResult is returned by ListPurchases.
type PurchaseListResult struct {
	Page core.OrderPage `json:"page"`
}

// PurchaseFormResult is returned by NewPurchaseForm.
type PurchaseFormResult struct {
	Form core.PurchaseForm `json:"form"`
}

// PurchaseResult is returned by purchase read and write operations.
type PurchaseResult struct {
	Order *core.Order      `json:"order"`
	Lines []core.OrderLine `json:"lines"`
}

// PurchaseEditResult is returned by EditPurchase.
type PurchaseEditResult struct {
	Order *core.Order     `json:"order"`
	Lines []core.EditLine `json:"lines"`
}
