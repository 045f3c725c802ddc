package service

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"coffeeshop-backend/config"
	"coffeeshop-backend/internal/metrics"
	"coffeeshop-backend/internal/model"
	"coffeeshop-backend/internal/util"

	"go.uber.org/zap"
	"gopkg.in/mail.v2"
)

// Notifier 发送用户通知，失败不影响主流程
type Notifier interface {
	SendWelcome(user *model.User)
	SendOrderConfirmation(user *model.User, order *model.Order)
}

type EmailService struct {
	enabled  bool
	smtpHost string
	smtpPort int
	username string
	password string
	send     func(m *mail.Message) error
}

var _ Notifier = (*EmailService)(nil)

func NewEmailService(cfg config.Config) *EmailService {
	s := &EmailService{
		enabled:  cfg.EmailEnabled(),
		smtpHost: cfg.SMTPHost,
		smtpPort: cfg.SMTPPort,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
	}
	s.send = s.dialAndSend
	return s
}

var welcomeTmpl = template.Must(template.New("welcome").Parse(`
<html>
<body style="font-family: 'Segoe UI', Tahoma, sans-serif; color: #333;">
	<h2>Welcome, {{.FullName}}!</h2>
	<p>Your coffee shop account is ready. Browse the menu and place your first order any time.</p>
	<p style="font-size: 0.8em; color: #777;">This message was sent automatically, please do not reply.</p>
</body>
</html>`))

var orderTmpl = template.Must(template.New("order").Parse(`
<html>
<body style="font-family: 'Segoe UI', Tahoma, sans-serif; color: #333;">
	<h2>Thanks for your order, {{.User.FullName}}!</h2>
	<p>Order <strong>{{.Order.OrderNumber}}</strong> has been received.</p>
	<table cellpadding="4">
		{{range .Order.Items}}<tr><td>{{.Quantity}} x {{.ProductName}}</td><td>{{.LineTotal.StringFixed 2}}</td></tr>{{end}}
		<tr><td>Subtotal</td><td>{{.Order.Subtotal.StringFixed 2}}</td></tr>
		<tr><td>Tax</td><td>{{.Order.Tax.StringFixed 2}}</td></tr>
		<tr><td>Delivery</td><td>{{.Order.DeliveryFee.StringFixed 2}}</td></tr>
		<tr><td><strong>Total</strong></td><td><strong>{{.Order.TotalAmount.StringFixed 2}}</strong></td></tr>
	</table>
	{{with .Order.EstimatedDeliveryTime}}<p>Estimated delivery: {{.Format "15:04"}}</p>{{end}}
</body>
</html>`))

func (s *EmailService) SendWelcome(user *model.User) {
	body, err := render(welcomeTmpl, user)
	if err != nil {
		util.Logger.Error("渲染欢迎邮件失败", zap.Error(err))
		return
	}
	s.sendEmailAsync("welcome", user.Email, "Welcome to the Coffee Shop", body)
}

func (s *EmailService) SendOrderConfirmation(user *model.User, order *model.Order) {
	body, err := render(orderTmpl, map[string]interface{}{"User": user, "Order": order})
	if err != nil {
		util.Logger.Error("渲染订单确认邮件失败", zap.Error(err), zap.Int("order_id", order.ID))
		return
	}
	s.sendEmailAsync("order_confirmation", user.Email, fmt.Sprintf("Order %s confirmed", order.OrderNumber), body)
}

func render(t *template.Template, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (s *EmailService) sendEmailAsync(kind, to, subject, body string) {
	if !s.enabled {
		util.Logger.Debug("未配置SMTP，跳过邮件", zap.String("template", kind), zap.String("to", to))
		return
	}
	go func() {
		if err := s.sendEmail(to, subject, body); err != nil {
			metrics.EmailsSent.WithLabelValues(kind, "failed").Inc()
			util.Logger.Error("异步发送邮件失败", zap.Error(err), zap.String("to", to))
			return
		}
		metrics.EmailsSent.WithLabelValues(kind, "sent").Inc()
	}()
}

func (s *EmailService) sendEmail(to, subject, body string) error {
	util.Logger.Info("开始发送邮件",
		zap.String("to", to),
		zap.String("subject", subject))

	m := mail.NewMessage()
	m.SetHeader("From", s.username)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.send(m); err != nil {
		util.Logger.Error("发送邮件失败", zap.Error(err))
		return fmt.Errorf("发送邮件失败: %w", err)
	}

	util.Logger.Info("邮件发送成功", zap.String("to", to))
	return nil
}

func (s *EmailService) dialAndSend(m *mail.Message) error {
	d := mail.NewDialer(s.smtpHost, s.smtpPort, s.username, s.password)
	d.Timeout = 20 * time.Second
	d.SSL = s.smtpPort == 465
	return d.DialAndSend(m)
}
