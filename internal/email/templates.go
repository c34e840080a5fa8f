package email

import (
	"bytes"
	htmltpl "html/template"
	texttpl "text/template"
	"time"
)

// VerifyVars son las variables del email de código de verificación.
type VerifyVars struct {
	Username string
	Code     string
	TTL      time.Duration
}

// ResetVars son las variables del email de reset de password.
type ResetVars struct {
	Username string
	Link     string
	TTL      time.Duration
}

const verifyHTML = `<!doctype html>
<html>
<body style="font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #f4f4f7; color: #333; margin: 0; padding: 40px 20px;">
  <div style="max-width: 600px; margin: 0 auto; background: #ffffff; border-radius: 12px; overflow: hidden;">
    <div style="background: linear-gradient(135deg, #ff6b35 0%, #f7931e 100%); padding: 32px; text-align: center;">
      <h1 style="color: #fff; margin: 0; font-size: 26px;">FitPulse</h1>
    </div>
    <div style="padding: 32px; line-height: 1.7;">
      <p>Hola {{.Username}},</p>
      <p>Tu código de verificación es:</p>
      <p style="font-size: 36px; letter-spacing: 10px; font-weight: 700; text-align: center; margin: 24px 0;">{{.Code}}</p>
      <p>El código vence en {{.TTL.Minutes | printf "%.0f"}} minutos. Si no creaste una cuenta, ignorá este mail.</p>
    </div>
  </div>
</body>
</html>`

const verifyText = `Hola {{.Username}},

Tu código de verificación es: {{.Code}}

El código vence en {{.TTL.Minutes | printf "%.0f"}} minutos.
Si no creaste una cuenta, ignorá este mail.
`

const resetHTML = `<!doctype html>
<html>
<body style="font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #f4f4f7; color: #333; margin: 0; padding: 40px 20px;">
  <div style="max-width: 600px; margin: 0 auto; background: #ffffff; border-radius: 12px; overflow: hidden;">
    <div style="background: linear-gradient(135deg, #ff6b35 0%, #f7931e 100%); padding: 32px; text-align: center;">
      <h1 style="color: #fff; margin: 0; font-size: 26px;">FitPulse</h1>
    </div>
    <div style="padding: 32px; line-height: 1.7;">
      <p>Hola {{.Username}},</p>
      <p>Recibimos un pedido para restablecer tu password. El link vence en {{.TTL.Minutes | printf "%.0f"}} minutos y sirve una sola vez:</p>
      <p style="text-align: center; margin: 24px 0;">
        <a href="{{.Link}}" style="background: #ff6b35; color: #fff; padding: 12px 28px; border-radius: 8px; text-decoration: none; font-weight: 600;">Restablecer password</a>
      </p>
      <p>Si no fuiste vos, ignorá este mail: tu password actual sigue vigente.</p>
    </div>
  </div>
</body>
</html>`

const resetText = `Hola {{.Username}},

Recibimos un pedido para restablecer tu password. El link vence en {{.TTL.Minutes | printf "%.0f"}} minutos y sirve una sola vez:

{{.Link}}

Si no fuiste vos, ignorá este mail: tu password actual sigue vigente.
`

// Templates renderiza los emails del core. Los templates se parsean una vez
// al construir.
type Templates struct {
	verifyHTML *htmltpl.Template
	verifyText *texttpl.Template
	resetHTML  *htmltpl.Template
	resetText  *texttpl.Template
}

func NewTemplates() *Templates {
	return &Templates{
		verifyHTML: htmltpl.Must(htmltpl.New("verify_html").Parse(verifyHTML)),
		verifyText: texttpl.Must(texttpl.New("verify_text").Parse(verifyText)),
		resetHTML:  htmltpl.Must(htmltpl.New("reset_html").Parse(resetHTML)),
		resetText:  texttpl.Must(texttpl.New("reset_text").Parse(resetText)),
	}
}

// RenderVerify renderiza el email del código de verificación.
func (t *Templates) RenderVerify(vars VerifyVars) (html, text string, err error) {
	return render(t.verifyHTML, t.verifyText, vars)
}

// RenderReset renderiza el email del link de reset.
func (t *Templates) RenderReset(vars ResetVars) (html, text string, err error) {
	return render(t.resetHTML, t.resetText, vars)
}

func render(h *htmltpl.Template, x *texttpl.Template, data any) (string, string, error) {
	var hb, tb bytes.Buffer
	if err := h.Execute(&hb, data); err != nil {
		return "", "", err
	}
	if err := x.Execute(&tb, data); err != nil {
		return "", "", err
	}
	return hb.String(), tb.String(), nil
}
