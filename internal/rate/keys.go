package rate

func (l *Limiter) loginKey(identifier string) string {
	return l.config.Prefix + ":rl:login:" + identifier
}

func (l *Limiter) loginIPKey(ip string) string {
	return l.config.Prefix + ":rl:ip:" + ip
}

func (l *Limiter) refreshKey(tokenHash string) string {
	return l.config.Prefix + ":rl:refresh:" + tokenHash
}
