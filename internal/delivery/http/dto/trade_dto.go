package dto

// TradeForm represents a buy or sell form submission.
// Shares stays a string so validation can tell "abc" from "-1".
type TradeForm struct {
	Symbol string `form:"symbol"`
	Shares string `form:"shares"`
}

// QuoteForm represents the quote lookup form
type QuoteForm struct {
	Symbol string `form:"symbol"`
}

// TopUpForm represents the add-cash form on the portfolio page
type TopUpForm struct {
	Amount string `form:"more_money"`
}
