package session

// Wire payloads for the per-connection text-message protocol.
// Inbound messages carry a "type" discriminator; unknown or malformed
// messages are answered with an error payload and ignored.

// Inbound message types.
const (
	msgStart    = "start"
	msgStop     = "stop"
	msgSetPrice = "set_price"
)

// clientMsg is the decoded envelope for all inbound messages.
type clientMsg struct {
	Type   string  `json:"type"`
	Amount string  `json:"amount"` // start: fiat amount as a decimal string
	Crypto string  `json:"crypto"` // start/set_price: asset identifier
	Price  float64 `json:"price"`  // set_price only
}

// priceUpdateMsg reports the simulated price and current valuation of
// the open position.
type priceUpdateMsg struct {
	Type       string  `json:"type"`
	Price      float64 `json:"price"`
	Multiplier float64 `json:"multiplier"`
	USDValue   float64 `json:"usd_value"`
}

// cashoutResultMsg reports the payout after a successful cash-out.
// Balance is formatted with two decimal places.
type cashoutResultMsg struct {
	Type         string  `json:"type"`
	Balance      string  `json:"balance"`
	CryptoAmount float64 `json:"crypto_amount"`
	USDAmount    float64 `json:"usd_amount"`
}

// errorMsg reports a non-fatal protocol error; the connection stays open.
type errorMsg struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func priceUpdate(price, multiplier, usdValue float64) priceUpdateMsg {
	return priceUpdateMsg{Type: "price_update", Price: price, Multiplier: multiplier, USDValue: usdValue}
}

func cashoutResult(balance string, cryptoAmount, usdAmount float64) cashoutResultMsg {
	return cashoutResultMsg{Type: "cashout_result", Balance: balance, CryptoAmount: cryptoAmount, USDAmount: usdAmount}
}

func protocolError(message string) errorMsg {
	return errorMsg{Type: "error", Message: message}
}
