package service

// Supported language names, as stored on users and passed in ?lang=.
const (
	LanguageEnglish = "english"
	LanguageHindi   = "hindi"
	LanguageMarathi = "marathi"
	LanguageBengali = "bengali"
	LanguageTamil   = "tamil"
	LanguageTelugu  = "telugu"
)

// Catalog maps language name to message key to text. Messages may carry
// positional placeholders such as {0}.
type Catalog map[string]map[string]string

// DefaultCatalog is the built-in message catalog. Missing keys fall back to English.
func DefaultCatalog() Catalog {
	return Catalog{
		LanguageEnglish: {
			"time.just_now":            "Just now",
			"time.minute_ago":          "{0} minute ago",
			"time.minutes_ago":         "{0} minutes ago",
			"time.hour_ago":            "{0} hour ago",
			"time.hours_ago":           "{0} hours ago",
			"time.day_ago":             "{0} day ago",
			"time.days_ago":            "{0} days ago",
			"activity.student_created": "Added student profile",
			"activity.student_updated": "Updated student profile",
			"activity.student_deleted": "Removed student profile",
			"activity.agent_completed": "{0} completed",
			"accessibility.high":       "High Support",
			"accessibility.medium":     "Medium Support",
			"accessibility.none":       "No Special Needs",
			"dashboard.title":          "Dashboard",
			"dashboard.teaching_aids":  "Teaching Aids",
			"dashboard.lesson_plans":   "Lesson Plans",
			"dashboard.assessments":    "Assessments",
			"dashboard.stories":        "Stories",
			"dashboard.translations":   "Translations",
			"dashboard.image_analyses": "Image Analyses",
			"dashboard.students":       "Students",
			"dashboard.recent":         "Recent Activity",
			"dashboard.no_activity":    "No recent activity",
			"login.title":              "Sign in to AI Saathi",
			"login.email":              "Email",
			"login.password":           "Password",
			"login.submit":             "Sign in",
			"login.invalid":            "Invalid email or password",
		},
		LanguageHindi: {
			"time.just_now":            "अभी अभी",
			"time.minute_ago":          "{0} मिनट पहले",
			"time.minutes_ago":         "{0} मिनट पहले",
			"time.hour_ago":            "{0} घंटा पहले",
			"time.hours_ago":           "{0} घंटे पहले",
			"time.day_ago":             "{0} दिन पहले",
			"time.days_ago":            "{0} दिन पहले",
			"activity.student_created": "छात्र प्रोफ़ाइल जोड़ी गई",
			"activity.student_updated": "छात्र प्रोफ़ाइल अपडेट की गई",
			"activity.student_deleted": "छात्र प्रोफ़ाइल हटाई गई",
			"activity.agent_completed": "{0} पूरा हुआ",
			"accessibility.high":       "उच्च सहायता",
			"accessibility.medium":     "मध्यम सहायता",
			"accessibility.none":       "कोई विशेष आवश्यकता नहीं",
			"dashboard.title":          "डैशबोर्ड",
			"dashboard.teaching_aids":  "शिक्षण सामग्री",
			"dashboard.lesson_plans":   "पाठ योजनाएँ",
			"dashboard.assessments":    "मूल्यांकन",
			"dashboard.stories":        "कहानियाँ",
			"dashboard.translations":   "अनुवाद",
			"dashboard.image_analyses": "चित्र विश्लेषण",
			"dashboard.students":       "छात्र",
			"dashboard.recent":         "हाल की गतिविधि",
			"dashboard.no_activity":    "कोई हाल की गतिविधि नहीं",
			"login.title":              "एआई साथी में साइन इन करें",
			"login.email":              "ईमेल",
			"login.password":           "पासवर्ड",
			"login.submit":             "साइन इन",
			"login.invalid":            "अमान्य ईमेल या पासवर्ड",
		},
		LanguageMarathi: {
			"time.just_now":         "आत्ताच",
			"time.minute_ago":       "{0} मिनिटापूर्वी",
			"time.minutes_ago":      "{0} मिनिटांपूर्वी",
			"time.hour_ago":         "{0} तासापूर्वी",
			"time.hours_ago":        "{0} तासांपूर्वी",
			"time.day_ago":          "{0} दिवसापूर्वी",
			"time.days_ago":         "{0} दिवसांपूर्वी",
			"accessibility.high":    "उच्च सहाय्य",
			"accessibility.medium":  "मध्यम सहाय्य",
			"accessibility.none":    "विशेष गरज नाही",
			"dashboard.title":       "डॅशबोर्ड",
			"dashboard.students":    "विद्यार्थी",
			"dashboard.recent":      "अलीकडील हालचाली",
			"dashboard.no_activity": "अलीकडील हालचाल नाही",
		},
		LanguageBengali: {
			"time.just_now":         "এইমাত্র",
			"time.minute_ago":       "{0} মিনিট আগে",
			"time.minutes_ago":      "{0} মিনিট আগে",
			"time.hour_ago":         "{0} ঘণ্টা আগে",
			"time.hours_ago":        "{0} ঘণ্টা আগে",
			"time.day_ago":          "{0} দিন আগে",
			"time.days_ago":         "{0} দিন আগে",
			"accessibility.high":    "উচ্চ সহায়তা",
			"accessibility.medium":  "মাঝারি সহায়তা",
			"accessibility.none":    "কোনো বিশেষ প্রয়োজন নেই",
			"dashboard.title":       "ড্যাশবোর্ড",
			"dashboard.students":    "শিক্ষার্থী",
			"dashboard.recent":      "সাম্প্রতিক কার্যকলাপ",
			"dashboard.no_activity": "কোনো সাম্প্রতিক কার্যকলাপ নেই",
		},
		LanguageTamil: {
			"time.just_now":         "இப்போது",
			"time.minute_ago":       "{0} நிமிடத்திற்கு முன்பு",
			"time.minutes_ago":      "{0} நிமிடங்களுக்கு முன்பு",
			"time.hour_ago":         "{0} மணி நேரத்திற்கு முன்பு",
			"time.hours_ago":        "{0} மணி நேரங்களுக்கு முன்பு",
			"time.day_ago":          "{0} நாளுக்கு முன்பு",
			"time.days_ago":         "{0} நாட்களுக்கு முன்பு",
			"accessibility.high":    "அதிக ஆதரவு",
			"accessibility.medium":  "நடுத்தர ஆதரவு",
			"accessibility.none":    "சிறப்பு தேவைகள் இல்லை",
			"dashboard.title":       "டாஷ்போர்டு",
			"dashboard.students":    "மாணவர்கள்",
			"dashboard.recent":      "சமீபத்திய செயல்பாடு",
			"dashboard.no_activity": "சமீபத்திய செயல்பாடு இல்லை",
		},
		LanguageTelugu: {
			"time.just_now":         "ఇప్పుడే",
			"time.minute_ago":       "{0} నిమిషం క్రితం",
			"time.minutes_ago":      "{0} నిమిషాల క్రితం",
			"time.hour_ago":         "{0} గంట క్రితం",
			"time.hours_ago":        "{0} గంటల క్రితం",
			"time.day_ago":          "{0} రోజు క్రితం",
			"time.days_ago":         "{0} రోజుల క్రితం",
			"accessibility.high":    "అధిక మద్దతు",
			"accessibility.medium":  "మధ్యస్థ మద్దతు",
			"accessibility.none":    "ప్రత్యేక అవసరాలు లేవు",
			"dashboard.title":       "డాష్‌బోర్డ్",
			"dashboard.students":    "విద్యార్థులు",
			"dashboard.recent":      "ఇటీవలి కార్యకలాపాలు",
			"dashboard.no_activity": "ఇటీవలి కార్యకలాపాలు లేవు",
		},
	}
}
