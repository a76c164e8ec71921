package notify

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/sakashimaa/pos-console/services/order/internal/domain"
)

const statusSubject = "Order status updated"

var statusTemplate = template.Must(template.New("status").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif;">
	<h2>Your order status has been updated at {{.ShopName}}</h2>
	<p>Order <b>#{{.OrderID}}</b> is now <b>{{.Label}}</b>.</p>
	<table cellpadding="6" style="border-collapse: collapse;">
		<tr><th align="left">Product</th><th align="right">Qty</th><th align="right">Price</th></tr>
		{{- range .Details}}
		<tr><td>{{.Name}}</td><td align="right">{{.Quantity}}</td><td align="right">{{.PriceDiscounted}}</td></tr>
		{{- end}}
	</table>
	<p>Total: {{.TotalPrice}}<br>Discount: {{.Discount}}<br>To pay: <b>{{.IntoMoney}}</b></p>
	{{- if .ShopLink}}
	<p><a href="{{.ShopLink}}">Visit {{.ShopName}}</a></p>
	{{- end}}
	{{- if .ReplyTo}}
	<p>Questions? Reply to {{.ReplyTo}}.</p>
	{{- end}}
</body>
</html>
`))

type Shop struct {
	Name    string
	Link    string
	ReplyTo string
}

type statusView struct {
	ShopName   string
	ShopLink   string
	ReplyTo    string
	OrderID    int64
	Label      string
	Details    []domain.OrderDetail
	TotalPrice int64
	Discount   int64
	IntoMoney  int64
}

// RenderStatus renders the e-mail body announcing the current value of axis.
func RenderStatus(shop Shop, order *domain.Order, axis domain.Axis) (string, error) {
	view := statusView{
		ShopName:   shop.Name,
		ShopLink:   shop.Link,
		ReplyTo:    shop.ReplyTo,
		OrderID:    order.ID,
		Label:      domain.StatusLabel(order.Status(axis)),
		Details:    order.Details,
		TotalPrice: order.TotalPrice,
		Discount:   order.TotalPrice - order.IntoMoney,
		IntoMoney:  order.IntoMoney,
	}

	var buf bytes.Buffer
	if err := statusTemplate.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("render status email: %w", err)
	}

	return buf.String(), nil
}
