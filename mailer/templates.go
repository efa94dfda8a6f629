package mailer

import (
	"strings"

	g "github.com/maragudk/gomponents"
	. "github.com/maragudk/gomponents/html"

	"vendhansite/constants"
	"vendhansite/database"
)

func renderHTML(body ...g.Node) string {
	doc := HTML(
		Lang("en"),
		Head(Meta(Charset("utf-8"))),
		Body(
			Div(Style("font-family: sans-serif; max-width: 600px; margin: 0 auto;"),
				g.Group(body),
				P(Style("color: #888; font-size: 12px;"),
					g.Textf("— %s", constants.APP_NAME)),
			),
		),
	)

	var sb strings.Builder
	if err := doc.Render(&sb); err != nil {
		return ""
	}
	return sb.String()
}

func otpBody(code string) string {
	return renderHTML(
		H2(g.Text("Your verification code")),
		P(Style("font-size: 28px; letter-spacing: 6px; font-weight: bold;"), g.Text(code)),
		P(g.Text("This code will expire in 10 minutes. If you did not request it, you can ignore this email.")),
	)
}

func contactNotificationBody(cm *database.ContactMessage) string {
	return renderHTML(
		H2(g.Text("New contact form submission")),
		fieldRow("Name", cm.FirstName+" "+cm.LastName),
		fieldRow("Email", cm.Email),
		H3(g.Text("Message")),
		P(g.Text(cm.MessageContent)),
	)
}

func applicationNotificationBody(app *database.Application) string {
	return renderHTML(
		H2(g.Text("New job application: "+app.Position)),
		fieldRow("Name", app.FirstName+" "+app.LastName),
		fieldRow("Email", app.Email),
		fieldRow("Phone", app.PhoneNumber),
		fieldRow("City", app.City),
		fieldRow("District", app.District),
		fieldRow("Documents folder", app.UploadFolder),
	)
}

func replyBody(content string) string {
	paragraphs := []g.Node{}
	for _, line := range strings.Split(content, "\n") {
		paragraphs = append(paragraphs, P(g.Text(line)))
	}
	return renderHTML(
		H2(g.Textf("A reply from %s", constants.APP_NAME)),
		Div(paragraphs...),
	)
}

func fieldRow(label, value string) g.Node {
	return P(
		Strong(g.Text(label+": ")),
		g.Text(value),
	)
}
