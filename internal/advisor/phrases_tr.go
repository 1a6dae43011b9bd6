package advisor

import (
	"fmt"
	"strings"
	"time"

	"fintech/internal/core"
)

type turkish struct{}

var trPages = map[page]string{
	pageDashboard:   "Dashboard",
	pageExpenses:    "Harcamalar",
	pageIncome:      "Gelirler",
	pageTaxPlanning: "Vergi Planlaması",
}

var trMonths = [...]string{
	"Ocak", "Şubat", "Mart", "Nisan", "Mayıs", "Haziran",
	"Temmuz", "Ağustos", "Eylül", "Ekim", "Kasım", "Aralık",
}

func (turkish) month(t time.Time) string {
	return fmt.Sprintf("%s %d", trMonths[t.Month()-1], t.Year())
}

func (turkish) navigate(p page) string {
	return fmt.Sprintf("Sizi %s sayfasına yönlendiriyorum.", trPages[p])
}

func (turkish) growth(g growthClause) string {
	switch {
	case g.Sign > 0:
		return fmt.Sprintf("Bu, %s ayına göre %s artış gösteriyor.", g.PreviousMonth, g.Percent)
	case g.Sign < 0:
		return fmt.Sprintf("Bu, %s ayına göre %s azalış gösteriyor.", g.PreviousMonth, g.Percent)
	default:
		return fmt.Sprintf("Bu, %s ayı ile aynı seviyede.", g.PreviousMonth)
	}
}

func (t turkish) income(month, amount string, g growthClause) string {
	return fmt.Sprintf("%s ayı toplam geliriniz %s. %s Gelirinizi \"Gelirler\" sayfasından detaylı olarak görüntüleyebilir ve yönetebilirsiniz.",
		month, amount, t.growth(g))
}

func (t turkish) monthlyExpense(month, amount string, g growthClause, topName, topAmount string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s ayı toplam harcamanız %s. %s", month, amount, t.growth(g))
	if topName != "" {
		fmt.Fprintf(&b, "\nEn çok harcama yaptığınız kategori \"%s\" (%s).", topName, topAmount)
	}
	b.WriteString(" Harcamalarınızı \"Harcamalar\" sayfasından detaylı olarak görüntüleyebilir ve yönetebilirsiniz.")
	return b.String()
}

func (turkish) savings(month, amount, rate, target string, onTarget bool) string {
	status := fmt.Sprintf("Bu oran, %s olan hedef tasarruf oranınızın altında. Harcamalarınızı azaltarak veya gelirinizi artırarak tasarruf oranınızı yükseltebilirsiniz.", target)
	if onTarget {
		status = "Bu, hedeflediğiniz tasarruf oranının üzerinde. Harika bir iş çıkarıyorsunuz!"
	}
	return fmt.Sprintf("%s ayı tasarrufunuz %s, tasarruf oranınız %s. %s", month, amount, rate, status)
}

var trHealth = map[core.HealthLevel]string{
	core.HealthGood:       "İyi",
	core.HealthMedium:     "Orta",
	core.HealthImprovable: "Geliştirilebilir",
}

func (turkish) health(level core.HealthLevel, rate, target string) string {
	var advice string
	switch level {
	case core.HealthGood:
		advice = "Mevcut stratejinizi sürdürmeniz ve acil durum fonunuzu güçlendirmeniz önerilir."
	case core.HealthMedium:
		advice = "Harcamalarınızı azaltmanız ve tasarruf oranınızı artırmanız önerilir."
	default:
		advice = "Bütçe planlamanızı gözden geçirmeniz ve gereksiz harcamalarınızı kısmanız önerilir."
	}
	return fmt.Sprintf("Finansal sağlık durumunuz \"%s\" olarak değerlendirilmektedir. Aylık tasarruf oranınız %s, hedef oran ise %s. %s",
		trHealth[level], rate, target, advice)
}

func (turkish) budgetStatus(lines []string) string {
	return fmt.Sprintf("Bütçe durumunuz şu şekildedir:\n%s\n\nBütçe planlamanızı \"Bütçe\" sayfasından detaylı olarak görüntüleyebilir ve düzenleyebilirsiniz.",
		strings.Join(lines, ", "))
}

func (turkish) budgetAdvice(high []string, nextTarget string) string {
	advice := "Tüm kategorilerde bütçe limitinizin altındasınız. İyi bir mali yönetim gösteriyorsunuz!"
	if len(high) > 0 {
		advice = fmt.Sprintf("Şu kategorilerde bütçe limitinize yaklaşıyorsunuz: %s. Bu alanlardaki harcamalarınızı azaltmanız önerilir.",
			strings.Join(high, ", "))
	}
	return fmt.Sprintf("%s Gelecek ay için tasarruf hedefinizi %s olarak belirleyerek finansal hedeflerinize daha hızlı ulaşabilirsiniz.",
		advice, nextTarget)
}

type trCategory struct {
	period string
	spent  string // e.g. "sağlık harcaması"
	yours  string // e.g. "sağlık harcamanız"
}

var trCategories = map[categoryKind]trCategory{
	kindHealth:    {"Bu yıl", "sağlık harcaması", "sağlık harcamanız"},
	kindMarket:    {"Bu ay", "market harcaması", "market harcamanız"},
	kindEducation: {"Bu yıl", "eğitim harcaması", "eğitim harcamanız"},
	kindBills:     {"Bu ay", "fatura ödemesi", "fatura ödemeniz"},
	kindTransport: {"Bu ay", "ulaşım harcaması", "ulaşım harcamanız"},
}

var trLevels = map[budgetLevel]string{
	levelGood:     "iyi durumda",
	levelHigh:     "yüksek seviyede",
	levelCritical: "kritik seviyede",
}

func (turkish) categoryExpenses(k categoryKind, r categoryReport) string {
	c := trCategories[k]
	var b strings.Builder
	fmt.Fprintf(&b, "%s toplam %s %s yapmışsınız.", c.period, r.Total, c.spent)
	if r.Deductible != "" {
		fmt.Fprintf(&b, " Bunların %s tutarındaki kısmı vergi indirimine tabi.", r.Deductible)
	}
	fmt.Fprintf(&b, " Son %s %s tarihinde %s tutarında.", c.yours, r.LastDate, r.LastAmount)
	if u := r.Budget; u != nil {
		fmt.Fprintf(&b, " Bu kategoride aylık bütçenizin %s kadarını kullandınız, bütçeniz %s.", u.Percent, trLevels[u.Level])
		if u.Over {
			fmt.Fprintf(&b, " Bu kategoride bütçenizi %s aştınız.", u.Remaining)
		} else {
			fmt.Fprintf(&b, " Bu kategoride ay sonuna kadar %s harcama hakkınız bulunuyor.", u.Remaining)
		}
	}
	return b.String()
}

func (turkish) noCategoryRecords(k categoryKind) string {
	c := trCategories[k]
	return fmt.Sprintf("Henüz kaydedilmiş %s bulunmuyor. Yeni bir %s eklemek için \"Harcamalar\" sayfasına gidebilirsiniz.",
		c.yours, c.spent)
}

func (turkish) investments(total, monthly, yearly string, allocation []string) string {
	return fmt.Sprintf("Toplam yatırım portföyünüz %s değerindedir. Son bir ayda %s ve son bir yılda %s getiri elde ettiniz. Portföy dağılımınız: %s. Yatırımlarınızı \"Yatırımlar\" sayfasından detaylı olarak görüntüleyebilir ve yönetebilirsiniz.",
		total, monthly, yearly, strings.Join(allocation, ", "))
}

func (turkish) goals(items []string) string {
	return fmt.Sprintf("Finansal hedeflerinizin durumu:\n%s\n\nHedeflerinizi \"Hedefler\" sayfasından detaylı olarak görüntüleyebilir ve düzenleyebilirsiniz.",
		strings.Join(items, ", "))
}

func (turkish) breakdown(items []string) string {
	return fmt.Sprintf("Harcamalarınızın kategorilere göre dağılımı:\n%s\n\nHarcama analizlerinizi \"Dashboard\" sayfasında görsel olarak inceleyebilirsiniz.",
		strings.Join(items, ", "))
}

func (turkish) noCategorized() string {
	return "Henüz kaydedilmiş kategorili harcamanız bulunmuyor. Harcama eklemek için \"Harcamalar\" sayfasına gidebilirsiniz."
}

func (turkish) balance(month, income, expenses, diff, pct string, positive bool) string {
	flow := "Negatif bir nakit akışınız var, harcamalarınızı azaltmanız önerilir."
	if positive {
		flow = "Pozitif bir nakit akışınız var."
	}
	return fmt.Sprintf("%s ayında %s gelir elde ettiniz ve %s harcama yaptınız. Gelir-gider farkınız %s, bu da gelirinizin %s kadarı. %s",
		month, income, expenses, diff, pct, flow)
}

func (turkish) totalExpense(amount, topName, topAmount, taxTotal string) string {
	return fmt.Sprintf("Bu ay toplam %s harcama yapmışsınız. En çok harcama yaptığınız kategori, %s ile \"%s\" kategorisidir. Vergi indirimine tabi toplam harcamanız: %s.",
		amount, topAmount, topName, taxTotal)
}

func (turkish) noExpenses() string {
	return "Henüz kaydedilmiş harcamanız bulunmuyor. Harcamalarınızı takip etmek için \"Harcamalar\" sayfasına gidebilirsiniz."
}

func (turkish) taxDeduction(total string, breakdown []string, saving string, ineligible []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Toplam %s tutarında vergi indirimine tabi harcamanız bulunuyor. Kategori bazında dağılım: %s.",
		total, strings.Join(breakdown, ", "))
	if saving != "" {
		fmt.Fprintf(&b, " Varsayılan vergi oranıyla tahmini vergi avantajınız %s.", saving)
	}
	if len(ineligible) > 0 {
		fmt.Fprintf(&b, " Şu kategoriler vergi ayarlarınızda indirime uygun değil: %s.", strings.Join(ineligible, ", "))
	}
	b.WriteString(" Vergi indirimine tabi yeni harcama eklemek için \"Harcamalar\" sayfasından ilgili harcamayı ekleyip \"Vergi İndirimi\" alanını \"Evet\" olarak işaretleyebilirsiniz.")
	return b.String()
}

func (turkish) noTaxDeductible() string {
	return "Henüz vergi indirimine tabi harcamanız bulunmuyor. Vergi avantajı sağlayan harcamalarınızı (eğitim, sağlık, bağış gibi) eklemek ve \"Vergi İndirimi\" olarak işaretlemek için \"Harcamalar\" sayfasını kullanabilirsiniz."
}

func (turkish) advice(b adviceBand) string {
	switch b {
	case bandLow:
		return "Finansal durumunuzu iyileştirmek için harcamalarınızı azaltmanızı ve tasarruf oranınızı artırmanızı öneririm. Öncelikle market ve eğlence gibi kategorilerdeki harcamalarınızı gözden geçirin. Acil durum fonunuz için aylık gelirinizin en az %10'unu ayırmaya çalışın."
	case bandMedium:
		return "Finansal durumunuz orta seviyede. Tasarruf oranınızı artırmak için gereksiz aboneliklerinizi gözden geçirin ve düzenli olarak fiyat karşılaştırması yapın. Bütçenizi daha etkin yönetmek için \"Bütçe\" sayfasındaki analiz araçlarını kullanabilirsiniz."
	default:
		return "Finansal durumunuz iyi görünüyor. Tasarruflarınızı çeşitli yatırım araçlarında değerlendirerek paranızın değerini koruyabilirsiniz. Emeklilik planınızı gözden geçirin ve uzun vadeli finansal hedeflerinize odaklanın. \"Yatırımlar\" sayfasında size uygun yatırım araçları sunulmaktadır."
	}
}

func (turkish) categoryList(names []string) string {
	return fmt.Sprintf("Harcama kategorileriniz: %s. Bu kategorilerin herhangi biri hakkında daha detaylı bilgi almak için \"Market harcamalarım ne kadar?\" gibi sorular sorabilirsiniz.",
		strings.Join(names, ", "))
}

func (turkish) greeting() string {
	return "Merhaba! Fintech AI asistanınız olarak size nasıl yardımcı olabilirim? Finansal verileriniz, harcamalarınız, gelirleriniz, tasarruflarınız veya yatırımlarınız hakkında sorular sorabilirsiniz."
}

func (turkish) genericExpense(topName string) string {
	top := ""
	if topName != "" {
		top = fmt.Sprintf(" En yüksek harcama kategoriniz \"%s\" olarak görünüyor.", topName)
	}
	return fmt.Sprintf("Harcamalarınızı \"Harcamalar\" sayfasından görüntüleyebilir, ekleyebilir ve düzenleyebilirsiniz.%s Belirli bir kategori hakkında daha fazla bilgi için \"Sağlık harcamalarım ne kadar?\" gibi sorular sorabilirsiniz.", top)
}

func (t turkish) genericIncome(month, amount string, g growthClause) string {
	return fmt.Sprintf("Gelirinizi \"Gelirler\" sayfasından yönetebilirsiniz. %s ayı geliriniz %s. %s", month, amount, t.growth(g))
}

func (turkish) genericBudget(category, pct string) string {
	usage := ""
	if category != "" {
		usage = fmt.Sprintf(" Şu ana kadar %s harcamalarınız için belirlediğiniz limitin %s kadarına ulaştınız.", category, pct)
	}
	return fmt.Sprintf("Bütçe planlama özelliğimizle aylık harcama limitlerini belirleyebilirsiniz.%s Detaylı bütçe bilgisi için \"Bütçe durumum nedir?\" diye sorabilirsiniz.", usage)
}

func (turkish) genericInvestment(monthly string) string {
	return fmt.Sprintf("Yatırım portföyünüzü \"Yatırımlar\" sayfasında takip edebilirsiniz. Portföyünüzün son bir aylık getirisi %s. Detaylı bilgi için \"Yatırım portföyüm nedir?\" diye sorabilirsiniz.", monthly)
}

func (turkish) thanks() string {
	return "Rica ederim! Başka bir konuda yardıma ihtiyacınız olursa, bana sormaktan çekinmeyin."
}

func (turkish) help() string {
	return "Size yardımcı olmak için buradayım. Finansal durumunuz hakkında bilgi almak için \"Finansal durumum nasıl?\", \"Aylık gelir-giderim ne kadar?\", \"Sağlık harcamalarım ne kadar?\" gibi sorular sorabilir veya \"Yatırım tavsiyesi\" gibi öneriler isteyebilirsiniz."
}

func (turkish) navigationHelp() string {
	return "Hangi sayfaya gitmek istediğinizi söyleyebilirsiniz. Örneğin: \"Harcamalar sayfasına git\" veya \"Dashboard'a git\" diyebilirsiniz."
}

func (turkish) fallback() string {
	return "Üzgünüm, tam olarak anlayamadım. Finansal verileriniz, harcamalarınız, gelirleriniz, yatırımlarınız veya bütçeniz hakkında daha spesifik sorular sorabilirsiniz. Örneğin \"Aylık gelirim ne kadar?\", \"Sağlık harcamalarım ne kadar?\", \"Finansal durumumu analiz et\" veya \"Yatırım tavsiyesi ver\" gibi."
}
