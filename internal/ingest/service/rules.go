package service

import "github.com/smallbiznis/invoicelens/internal/ingest/extract"

const llm = "extractedData.llmData."

// flat lists field paths under every spelling of the entity object, in that order.
func flat(objects []string, fields ...string) []string {
	paths := make([]string, 0, len(objects)*len(fields))
	for _, obj := range objects {
		for _, field := range fields {
			paths = append(paths, obj+"."+field)
		}
	}
	return paths
}

func rule(groups ...[]string) extract.Rule {
	var paths []string
	for _, g := range groups {
		paths = append(paths, g...)
	}
	return extract.NewRule(paths...)
}

func one(paths ...string) []string { return paths }

var (
	vendorObjects   = []string{"vendor", "Vendor"}
	customerObjects = []string{"customer", "Customer"}
)

var vendorRules = struct {
	ID, Name, TaxID, Email, Phone, Address, City, State, Country, PostalCode, PaymentTerms extract.Rule
}{
	ID:           rule(flat(vendorObjects, "vendorId", "id")),
	Name:         rule(flat(vendorObjects, "name", "companyName"), one(llm+"vendor.value.vendorName")),
	TaxID:        rule(flat(vendorObjects, "taxId"), one(llm+"vendor.value.vendorTaxId")),
	Email:        rule(flat(vendorObjects, "email")),
	Phone:        rule(flat(vendorObjects, "phone")),
	Address:      rule(flat(vendorObjects, "address"), one(llm+"vendor.value.vendorAddress")),
	City:         rule(flat(vendorObjects, "city")),
	State:        rule(flat(vendorObjects, "state")),
	Country:      rule(flat(vendorObjects, "country")),
	PostalCode:   rule(flat(vendorObjects, "postalCode", "zipCode")),
	PaymentTerms: rule(flat(vendorObjects, "paymentTerms")),
}

var customerRules = struct {
	ID, Name, Email, Phone, Address, City, State, Country, PostalCode extract.Rule
}{
	ID:         rule(flat(customerObjects, "customerId", "id")),
	Name:       rule(flat(customerObjects, "name", "companyName"), one(llm+"customer.value.customerName")),
	Email:      rule(flat(customerObjects, "email")),
	Phone:      rule(flat(customerObjects, "phone")),
	Address:    rule(flat(customerObjects, "address"), one(llm+"customer.value.customerAddress")),
	City:       rule(flat(customerObjects, "city")),
	State:      rule(flat(customerObjects, "state")),
	Country:    rule(flat(customerObjects, "country")),
	PostalCode: rule(flat(customerObjects, "postalCode", "zipCode")),
}

var invoiceRules = struct {
	SourceID, Number, Date, DueDate, Status, Currency, Subtotal, Tax, Total, AmountPaid, Category, Description, DocumentURL, LineItems, Payments extract.Rule
}{
	SourceID:    extract.NewRule("_id"),
	Number:      extract.NewRule("invoiceNumber", "invoiceId", llm+"invoice.value.invoiceId", "_id"),
	Date:        extract.NewRule("invoiceDate", "date", "createdDate", llm+"invoice.value.invoiceDate", "createdAt"),
	DueDate:     extract.NewRule("dueDate", "paymentDue", llm+"payment.value.dueDate"),
	Status:      extract.NewRule("status"),
	Currency:    extract.NewRule("currency"),
	Subtotal:    extract.NewRule("subtotal", "subTotal", llm+"summary.value.subTotal", "amount"),
	Tax:         extract.NewRule("tax", "taxAmount", llm+"summary.value.totalTax"),
	Total:       extract.NewRule("total", "totalAmount", llm+"summary.value.invoiceTotal"),
	AmountPaid:  extract.NewRule("amountPaid", "paid"),
	Category:    extract.NewRule("category", "type"),
	Description: extract.NewRule("description", "notes"),
	DocumentURL: extract.NewRule("documentUrl", "attachmentUrl"),
	LineItems:   extract.NewRule("lineItems", "items"),
	Payments:    extract.NewRule("payments"),
}

var lineItemRules = struct {
	Description, Quantity, UnitPrice, Amount, Category, TaxRate, TaxAmount extract.Rule
}{
	Description: extract.NewRule("description", "name"),
	Quantity:    extract.NewRule("quantity"),
	UnitPrice:   extract.NewRule("unitPrice", "price"),
	Amount:      extract.NewRule("amount"),
	Category:    extract.NewRule("category"),
	TaxRate:     extract.NewRule("taxRate"),
	TaxAmount:   extract.NewRule("taxAmount"),
}

var paymentRules = struct {
	Date, Amount, Method, Reference, Notes extract.Rule
}{
	Date:      extract.NewRule("date", "paymentDate"),
	Amount:    extract.NewRule("amount"),
	Method:    extract.NewRule("method", "paymentMethod"),
	Reference: extract.NewRule("reference", "referenceNumber"),
	Notes:     extract.NewRule("notes"),
}
