package bot

import (
	"fmt"
	"time"

	"snappword/internal/quota"
)

// User-facing message texts (zh-TW).
const (
	msgWelcome = "嗨！歡迎加入 SnappWord 截詞 👋\n\n" +
		"我是你的 AI 單字卡助手 ✨\n" +
		"只要把學語言時的截圖傳給我，我就能幫你秒變精美單字卡！\n\n" +
		"📸 支援各種來源：\n" +
		"• Duolingo、Busuu 等學習 App\n" +
		"• Netflix、YouTube 字幕\n" +
		"• 文章、新聞、任何有生字的畫面\n\n" +
		"🚀 現在就試試看吧！\n" +
		"傳一張截圖給我，幾秒後就能收到你的第一組單字卡。\n\n" +
		"💡 輸入「幫助」可隨時查看使用說明"

	msgHelp = "📸 使用方式：\n\n" +
		"1. 在任何 App 截圖（Duolingo、Netflix、文章...）\n" +
		"2. 把截圖傳給我\n" +
		"3. 幾秒內收到精美單字卡！\n\n" +
		"就是這麼簡單 ✨"

	msgAnalyzing = "🔍 AI 正在解析您的截圖...\n請稍候 3-5 秒，單字卡馬上就來！"

	msgSendScreenshot = "📸 請傳送截圖給我！\n我會幫你把圖片中的生字變成單字卡 ✨"

	msgUnknownText = "📸 請傳送截圖給我，我來幫你提取單字！\n輸入「幫助」查看使用說明。"

	msgUpgradeStart = "好的！請傳送付款成功的截圖，我會轉給團隊處理 🧾\n\n" +
		"💡 提醒：最少需支付 1 個月費用，也可一次支付多個月喔！"

	msgProofReceived = "已收到你的付款截圖！我們會在 24 小時內為你升級 🎉"

	msgNothingFound = "我在這張截圖中沒有發現你在學習的單字 🤔\n" +
		"試試傳送 Duolingo、Netflix 字幕或文章的截圖！"

	msgAnalyzeTimeout = "AI 解析花得比平常久，這次先暫停了 ⏰\n請稍後再傳一次，通常馬上就會好！"

	msgGenericError = "處理截圖時發生錯誤 😅\n請稍後重試，或換一張更清晰的截圖。"

	msgDailyQuota = "📊 今天的截圖解析量已達上限\n明天就會自動重置，請明天再繼續！"

	msgCardSaved = "✅ 已存入你的單字本！明天早上會推播複習提醒喔 📚"

	msgCardSkipped = "⏭ 已跳過"

	msgCardNotFound = "⚠️ 找不到這張單字卡"
)

// quotaMessage renders a denial into its reason-specific text. The monthly
// variant carries usage figures and the reset date, which is always the
// first day of the next month, formatted locale-independently as M/D.
func quotaMessage(d quota.Decision, now time.Time) string {
	if d.Reason == quota.ReasonDaily {
		return msgDailyQuota
	}
	reset := quota.NextMonthlyReset(now)
	return fmt.Sprintf(
		"📊 本月已使用 %d/%d 張截圖額度\n額度已用完，%d/%d 會自動重置！\n\n💎 升級方案可獲得更多額度：\nsnappword.com/pricing",
		d.Used, d.Limit.Value(), int(reset.Month()), reset.Day(),
	)
}
