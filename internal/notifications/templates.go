package notifications

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/shopspring/decimal"

	"github.com/mmfactory/pizzeria-backend/pkg/db/models"
	"github.com/mmfactory/pizzeria-backend/pkg/enums"
)

var tmplFuncs = template.FuncMap{
	"money": func(amount decimal.Decimal) string { return amount.StringFixed(2) },
}

var statusMessages = map[enums.OrderStatus]string{
	enums.OrderStatusPending:   "Your order is being reviewed",
	enums.OrderStatusConfirmed: "Your order has been confirmed and will be prepared soon",
	enums.OrderStatusPreparing: "Our chefs are preparing your delicious pizza!",
	enums.OrderStatusReady:     "Your order is ready for pickup!",
	enums.OrderStatusCompleted: "Your order has been completed. Thank you!",
	enums.OrderStatusCancelled: "Your order has been cancelled",
}

type templateData struct {
	Order         *models.Order
	StatusLabel   string
	StatusMessage string
	PaymentLabel  string
	CallbackNum   string
	Notes         string
}

var orderPlacedTmpl = template.Must(template.New("order_placed").Funcs(tmplFuncs).Parse(`<!DOCTYPE html>
<html>
<body style="font-family: sans-serif; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
  <div style="background: #b91c1c; padding: 30px; text-align: center; border-radius: 12px 12px 0 0;">
    <h1 style="color: white; margin: 0;">M&amp;M Factory Pizza</h1>
    <p style="color: rgba(255,255,255,0.9); margin: 10px 0 0 0;">Order Confirmation</p>
  </div>
  <div style="background: #fff; border: 1px solid #e5e7eb; border-top: none; padding: 30px; border-radius: 0 0 12px 12px;">
    <h2 style="color: #22c55e;">Order Received!</h2>
    <p>Thank you for your order, {{.Order.CustomerName}}!</p>
    <p>Order number: <strong>{{.Order.OrderNumber}}</strong></p>
    <p>Payment: <strong>{{.PaymentLabel}}</strong></p>
    <table style="width: 100%; border-collapse: collapse;">
      {{range .Order.Items}}
      <tr>
        <td style="padding: 12px; border-bottom: 1px solid #eee;">
          <strong>{{.MenuItemName}}</strong>
          {{if .Extras}}<br><small style="color: #666;">Extras: {{range $i, $e := .Extras}}{{if $i}}, {{end}}{{$e.ExtraName}}{{if gt $e.Quantity 1}} x{{$e.Quantity}}{{end}}{{end}}</small>{{end}}
          {{if .SpecialInstructions}}<br><small style="color: #666;">Note: {{.SpecialInstructions}}</small>{{end}}
        </td>
        <td style="padding: 12px; border-bottom: 1px solid #eee; text-align: center;">{{.Quantity}}</td>
        <td style="padding: 12px; border-bottom: 1px solid #eee; text-align: right;">&euro;{{money .ItemTotal}}</td>
      </tr>
      {{end}}
    </table>
    <p style="text-align: right;">Subtotal: &euro;{{money .Order.Subtotal}}<br>
    VAT (21%): &euro;{{money .Order.Tax}}<br>
    <strong>Total: &euro;{{money .Order.Total}}</strong></p>
    <p style="color: #666;">Questions? Call us at {{.CallbackNum}}.</p>
  </div>
</body>
</html>`))

var statusUpdateTmpl = template.Must(template.New("status_update").Funcs(tmplFuncs).Parse(`<!DOCTYPE html>
<html>
<body style="font-family: sans-serif; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
  <div style="background: #b91c1c; padding: 30px; text-align: center; border-radius: 12px 12px 0 0;">
    <h1 style="color: white; margin: 0;">M&amp;M Factory Pizza</h1>
    <p style="color: rgba(255,255,255,0.9); margin: 10px 0 0 0;">Order Update</p>
  </div>
  <div style="background: #fff; border: 1px solid #e5e7eb; border-top: none; padding: 30px; border-radius: 0 0 12px 12px;">
    <h2>{{.StatusLabel}}</h2>
    <p>Hi {{.Order.CustomerName}},</p>
    <p>{{.StatusMessage}}</p>
    <p>Order number: <strong>{{.Order.OrderNumber}}</strong></p>
    {{if .Order.EstimatedPickupTime}}<p>Estimated pickup: {{.Order.EstimatedPickupTime.Format "15:04, Mon 2 Jan"}}</p>{{end}}
    <p style="color: #666;">Questions? Call us at {{.CallbackNum}}.</p>
  </div>
</body>
</html>`))

var adminNewOrderTmpl = template.Must(template.New("admin_new_order").Funcs(tmplFuncs).Parse(`<!DOCTYPE html>
<html>
<body style="font-family: sans-serif; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h1>New order {{.Order.OrderNumber}}</h1>
  <p><strong>{{.PaymentLabel}}</strong> &mdash; total &euro;{{money .Order.Total}}</p>
  <p>Customer: {{.Order.CustomerName}} ({{.Order.CustomerPhone}})</p>
  {{if .Notes}}<p>Notes: {{.Notes}}</p>{{end}}
  <table style="width: 100%; border-collapse: collapse;">
    {{range .Order.Items}}
    <tr>
      <td style="padding: 8px; border-bottom: 1px solid #eee;">
        {{.Quantity}} &times; <strong>{{.MenuItemName}}</strong>
        {{if .Extras}}<br><small>Extras: {{range $i, $e := .Extras}}{{if $i}}, {{end}}{{$e.ExtraName}}{{if gt $e.Quantity 1}} x{{$e.Quantity}}{{end}}{{end}}</small>{{end}}
        {{if .SpecialInstructions}}<br><small>Note: {{.SpecialInstructions}}</small>{{end}}
      </td>
      <td style="padding: 8px; border-bottom: 1px solid #eee; text-align: right;">&euro;{{money .ItemTotal}}</td>
    </tr>
    {{end}}
  </table>
</body>
</html>`))

func paymentLabel(order *models.Order) string {
	if order.PaymentStatus == enums.PaymentStatusPaid {
		return "PAID"
	}
	return "Pay at Pickup"
}

func render(kind enums.EventKind, order *models.Order, callbackNum string) (subject, body string, err error) {
	data := templateData{
		Order:         order,
		StatusLabel:   order.Status.DisplayLabel(),
		StatusMessage: statusMessages[order.Status],
		PaymentLabel:  paymentLabel(order),
		CallbackNum:   callbackNum,
	}
	if order.Notes != nil {
		data.Notes = *order.Notes
	}

	var tmpl *template.Template
	switch kind {
	case enums.EventOrderPlaced:
		subject = fmt.Sprintf("Order Confirmed #%s - M&M Factory Pizza", order.OrderNumber)
		tmpl = orderPlacedTmpl
	case enums.EventStatusUpdate:
		subject = fmt.Sprintf("Order #%s - %s", order.OrderNumber, order.Status.DisplayLabel())
		tmpl = statusUpdateTmpl
	case enums.EventAdminNewOrder:
		subject = fmt.Sprintf("NEW ORDER #%s - EUR %s - %s", order.OrderNumber, order.Total.StringFixed(2), paymentLabel(order))
		tmpl = adminNewOrderTmpl
	default:
		return "", "", fmt.Errorf("unknown event kind %q", kind)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", "", fmt.Errorf("render %s: %w", kind, err)
	}
	return subject, buf.String(), nil
}
