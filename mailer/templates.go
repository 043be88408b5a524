package mailer

import (
	"bytes"
	"html/template"

	"embroidery-backend/model"
)

type OrderSummary struct {
	CustomerName string
	Products     []model.LineItem
	TotalAmount  float64
	ZipLinks     []string
	Date         string
	OrderID      string
}

var orderSummaryTpl = template.Must(template.New("order_summary").Parse(`<html>
<body>
  <h2>Order Summary</h2>
  <p>Dear {{.CustomerName}},</p>
  <p>Thank you for your order placed on {{.Date}}. Order ID: <b>{{.OrderID}}</b></p>
  <h3>Items</h3>
  <ul>
  {{range .Products}}<li>{{.Name}} - {{printf "%.2f" .Price}} USD</li>
  {{end}}</ul>
  <p><b>Total: {{printf "%.2f" .TotalAmount}} USD</b></p>
  <h3>Your downloads</h3>
  <ul>
  {{range .ZipLinks}}<li><a href="{{.}}">{{.}}</a></li>
  {{end}}</ul>
  <p>If you have any questions, contact info@rgembroiderydesigns.com.</p>
</body>
</html>`))

type AdminCustomOrderNotice struct {
	Name  string
	Phone string
	Email string
}

var adminNoticeTpl = template.Must(template.New("admin_notice").Parse(`<h3>Dear Admin</h3>
<h3>A new order has been placed on your RG Embroidery Designs dashboard.</h3>
<p>Customer Name: {{.Name}}</p>
<p>Phone: {{.Phone}}</p>
<p>Email: {{.Email}}</p>
<p>Please log in to <a href="https://dashboard.rgembroiderydesigns.com">https://dashboard.rgembroiderydesigns.com</a> to review the complete order details and proceed with the next steps.</p>
<p>Thank You</p>`))

func RenderOrderSummary(d OrderSummary) (string, error) {
	var buf bytes.Buffer
	if err := orderSummaryTpl.Execute(&buf, d); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func RenderAdminCustomOrderNotice(d AdminCustomOrderNotice) (string, error) {
	var buf bytes.Buffer
	if err := adminNoticeTpl.Execute(&buf, d); err != nil {
		return "", err
	}
	return buf.String(), nil
}
