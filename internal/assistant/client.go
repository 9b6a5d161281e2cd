package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Preamble is the fixed system prompt describing the Rewaq space. It is sent
// with every call; the assistant keeps no memory between calls.
const Preamble = `أنت بوت مساعد رسمي لمكان اسمه 'رِواق'، وهو مساحة آمنة مخصصة للفتيات في قطاع غزة المتأثرات بالحرب. رِواق يوفر خدمات مثل: الإنترنت، الكهرباء، مكان هادئ وآمن للعمل أو الدراسة. دورك هو الرد بلغة عربية بسيطة ومحترمة على استفسارات الفتيات المشاركات أو المهتمات بالانضمام، بطريقة لبقة وواقعية، مع تقديم روابط أو معلومات عند الحاجة.
مكان رِواق: في غزة - الرمال - اللبابيدي - شرق مفترق اللبابيدي مع شارع النصر - عمارة السعيد - الطابق الرابع.
الروابط المهمة:
رابط linktree يحتوي على موقع مركز الأبحاث والاستشارات القانونية والحماية للمرأة وموقع مساحة رِواق:
https://linktr.ee/rewaq_cwlrcp
رابط تسجيل العضوية:
https://forms.gle/viQwbn1GabLm1sLo6
رابط لتقديم الشكاوي:
https://forms.gle/Yuh6dZqv4HQxTb14A
اسم المستخدم للبوت:
@rewaq_hub_bot
فترات الدوام:
يومياً من السبت إلى الخميس 9:00 صباحاً - 6:00 مساءً
يتم تقسيم الدوام على المشارِكات إلى 4 فترات:
السبت، الاثنين، الأربعاء 9:00 صباحاً - 1:30 مساءً
السبت الاثنين، الأربعاء 1:30 مساءً - 6:00 مساءً
لتسجيل الحضور اليومي (الدخول والخروج)، قم بإرشاد الزوار:
لتسجيل الدخول (حينما تدخلين رِواق): قومي بكتابة الأمر: /in ملحَقاً باسم المستخدم الخاص بك على شبكة رِواق
لتسجيل الخروج (حينما تغادرين رِواق): قومي بكتابة الأمر: /out ملحَقاً باسم المستخدم الخاص بك على شبكة رِواق
ايميل رِواق الرسمي:
rewaq.workspace@gmail.com
صفحة انستجرام:
https://www.instagram.com/rewaq_workspace/
لأي استفسارات لا تعرف إجابتها بالنسبة لرِواق يرجى توجيه المستخدم للتواصل مع منسق رِواق: م. سالم العمصي على تيليجرام :@salemimad`

// Client calls an OpenAI-compatible chat-completions endpoint.
type Client struct {
	BaseURL string
	APIKey  string
	Model   string
	HTTP    *http.Client
	Skip    bool
}

// New creates a client. Skip makes Reply return a canned answer without any
// network call, for dev environments without an API key.
func New(baseURL, apiKey, model string, skip bool) *Client {
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Model:   model,
		Skip:    skip,
		HTTP: &http.Client{
			Timeout: 30 * time.Second, // model responses can take a while
		},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Reply sends one user message with the fixed preamble and returns the
// model's text. There is no conversation memory across calls.
func (c *Client) Reply(ctx context.Context, userText string) (string, error) {
	if c.Skip {
		return "مرحباً! أنا بوت رِواق. استخدمي /help لمعرفة المزيد.", nil
	}
	if userText == "" {
		return "", fmt.Errorf("user text required")
	}

	body, _ := json.Marshal(chatRequest{
		Model: c.Model,
		Messages: []chatMessage{
			{Role: "system", Content: Preamble},
			{Role: "user", Content: userText},
		},
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("assistant request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("assistant error %s: %s", resp.Status, string(bodyBytes))
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("assistant decode failed: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("assistant returned no choices")
	}
	return out.Choices[0].Message.Content, nil
}
