package intake

// Policy holds the closed-world domain sets the pipeline consults. The sets
// are read-only after construction; tests substitute small fixtures without
// touching the pipeline itself.
type Policy struct {
	disposableDomains map[string]struct{}
	allowedProviders  map[string]struct{}
}

// NewPolicy builds a policy from explicit domain lists. Domains are matched
// case-insensitively against the normalized email domain.
func NewPolicy(disposable, allowed []string) Policy {
	p := Policy{
		disposableDomains: make(map[string]struct{}, len(disposable)),
		allowedProviders:  make(map[string]struct{}, len(allowed)),
	}
	for _, d := range disposable {
		p.disposableDomains[d] = struct{}{}
	}
	for _, d := range allowed {
		p.allowedProviders[d] = struct{}{}
	}
	return p
}

// DefaultPolicy returns the production domain sets.
func DefaultPolicy() Policy {
	return NewPolicy(disposableEmailDomains, allowedEmailProviders)
}

func (p Policy) isDisposable(domain string) bool {
	_, ok := p.disposableDomains[domain]
	return ok
}

func (p Policy) isAllowedProvider(domain string) bool {
	_, ok := p.allowedProviders[domain]
	return ok
}

// disposableEmailDomains lists known throwaway-email services. Treated as
// configuration data, not logic.
var disposableEmailDomains = []string{
	"tempmail.com", "temp-mail.org", "tempmailo.com", "tempmail.net",
	"guerrillamail.com", "guerrillamail.org", "guerrillamail.net", "guerrillamail.biz",
	"guerrillamail.de", "sharklasers.com", "guerrillamailblock.com",
	"mailinator.com", "mailinator.net", "mailinator.org", "mailinator2.com",
	"10minutemail.com", "10minutemail.net", "10minutemail.org", "10minemail.com",
	"throwaway.email", "throwawaymail.com", "trashmail.com", "trashmail.net",
	"trashmail.org", "trashmail.me", "trash-mail.com",
	"fakeinbox.com", "fakemailgenerator.com", "fakemail.net",
	"getnada.com", "nada.email", "getairmail.com",
	"yopmail.com", "yopmail.fr", "yopmail.net",
	"maildrop.cc", "mailnesia.com", "mailcatch.com",
	"dispostable.com", "discard.email", "discardmail.com",
	"spamgourmet.com", "spamgourmet.net", "spamgourmet.org",
	"mailexpire.com", "tempinbox.com", "tempmailaddress.com",
	"burnermail.io", "mohmal.com", "emailondeck.com",
	"minuteinbox.com", "emailfake.com", "crazymailing.com",
	"tempsky.com", "tempr.email", "tempail.com",
	"fakemailgenerator.net", "inboxkitten.com", "mailsac.com",
	"mytemp.email", "tmpmail.org", "tmpmail.net",
	"disposablemail.com", "instantemailaddress.com", "emailtemporaire.fr",
	"jetable.org", "dropmail.me", "mailnator.com",
	"spambox.us", "receivemail.com", "anonymmail.net",
	"anonmails.de", "anonymbox.com", "one-time.email",
}

// allowedEmailProviders lists the major consumer and professional providers
// accepted for signup. Unknown domains are rejected by default.
var allowedEmailProviders = []string{
	// Google
	"gmail.com", "googlemail.com",
	// Apple
	"icloud.com", "me.com", "mac.com",
	// Microsoft
	"outlook.com", "hotmail.com", "live.com", "msn.com",
	"outlook.co.uk", "hotmail.co.uk", "live.co.uk",
	"outlook.fr", "hotmail.fr", "live.fr",
	"outlook.de", "hotmail.de", "live.de",
	// Yahoo
	"yahoo.com", "yahoo.co.uk", "yahoo.fr", "yahoo.de",
	"yahoo.ca", "yahoo.com.au", "yahoo.co.in", "yahoo.com.br",
	"ymail.com", "rocketmail.com",
	// ProtonMail
	"protonmail.com", "proton.me", "pm.me",
	// AOL
	"aol.com", "aim.com",
	// Zoho
	"zoho.com", "zohomail.com",
	// FastMail
	"fastmail.com", "fastmail.fm",
	// GMX
	"gmx.com", "gmx.de", "gmx.net", "gmx.at", "gmx.ch",
	// Mail.com
	"mail.com", "email.com",
	// Other reputable providers
	"hey.com", "tutanota.com", "tutanota.de", "tuta.io",
	"mailbox.org", "posteo.de", "posteo.net",
}
