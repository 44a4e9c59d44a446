package momo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"hotelbooking-backend/internal/domains/payment/gateway"
	"hotelbooking-backend/internal/domains/payment/model"
)

// =====================================================
// MOMO CLIENT
// =====================================================

type Client struct {
	config     *Config
	httpClient *http.Client
}

func NewClient(config *Config) (gateway.MomoGateway, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid MoMo config: %w", err)
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

func (c *Client) CreatePaymentURL(ctx context.Context, req gateway.PaymentRequest) (string, error) {
	if req.OrderID == "" {
		return "", fmt.Errorf("order_id is required")
	}

	// Step 1: Build request parameters. MoMo uses integer VND.
	requestID := fmt.Sprintf("REQ%d", time.Now().UnixMilli())
	amount := req.Amount.Round(0).StringFixed(0)
	orderInfo := req.OrderInfo
	if orderInfo == "" {
		orderInfo = "Thanh toan don dat phong " + req.OrderID
	}
	requestType := "captureWallet"
	extraData := ""

	// Step 2: Sign
	rawSignature := BuildPaymentSignatureString(
		c.config.AccessKey,
		amount,
		extraData,
		c.config.IPNURL,
		req.OrderID,
		orderInfo,
		c.config.PartnerCode,
		c.config.ReturnURL,
		requestID,
		requestType,
	)
	signature := GenerateSignature(rawSignature, c.config.SecretKey)

	// Step 3: Call the create API
	requestBody := map[string]interface{}{
		"partnerCode": c.config.PartnerCode,
		"accessKey":   c.config.AccessKey,
		"requestId":   requestID,
		"amount":      amount,
		"orderId":     req.OrderID,
		"orderInfo":   orderInfo,
		"redirectUrl": c.config.ReturnURL,
		"ipnUrl":      c.config.IPNURL,
		"requestType": requestType,
		"extraData":   extraData,
		"signature":   signature,
		"lang":        "vi",
	}

	bodyJSON, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal MoMo request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.GetPaymentURL(), bytes.NewReader(bodyJSON))
	if err != nil {
		return "", fmt.Errorf("failed to create MoMo request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to call MoMo API: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read MoMo response: %w", err)
	}

	var respData map[string]interface{}
	if err := json.Unmarshal(bodyBytes, &respData); err != nil {
		return "", fmt.Errorf("failed to parse MoMo response: %w", err)
	}

	// Step 4: Check result code and extract payUrl
	resultCode, _ := respData["resultCode"].(float64)
	if int(resultCode) != ResultCodeSuccess {
		message, _ := respData["message"].(string)
		return "", fmt.Errorf("MoMo API error [%d]: %s", int(resultCode), message)
	}

	payURL, ok := respData["payUrl"].(string)
	if !ok || payURL == "" {
		return "", fmt.Errorf("payUrl missing from MoMo response")
	}

	return payURL, nil
}

func (c *Client) VerifySignature(cb model.MomoCallbackRequest) bool {
	raw := BuildCallbackSignatureString(
		fmt.Sprintf("%d", cb.Amount),
		cb.ExtraData,
		cb.Message,
		cb.OrderID,
		cb.OrderInfo,
		cb.OrderType,
		cb.PartnerCode,
		cb.PayType,
		cb.RequestID,
		fmt.Sprintf("%d", cb.ResponseTime),
		cb.ResultCode,
		cb.TransID,
	)

	return VerifyCallbackSignature(raw, cb.Signature, c.config.SecretKey)
}
