package fypapp

// TypeField is the schema discriminator carried by every record body.
const TypeField = "$type"

// EncodeRecord maps a typed record onto the generic JSON wire form.
// Absent optional fields are omitted rather than emitted as null.
func EncodeRecord(r Record) map[string]any {
	switch v := r.(type) {
	case Profile:
		return encodeProfile(v)
	case *Profile:
		return encodeProfile(*v)
	case Like:
		return encodeLike(v)
	case *Like:
		return encodeLike(*v)
	case Pass:
		return encodePass(v)
	case *Pass:
		return encodePass(*v)
	case Match:
		return encodeMatch(v)
	case *Match:
		return encodeMatch(*v)
	}
	return map[string]any{TypeField: r.NSID()}
}

func encodeProfile(p Profile) map[string]any {
	m := map[string]any{TypeField: p.NSID()}
	putStr(m, "displayName", p.DisplayName)
	putStr(m, "bio", p.Bio)
	putStr(m, "birthdate", p.Birthdate)
	putStr(m, "gender", p.Gender)
	putStrList(m, "lookingFor", p.LookingFor)
	if p.Location != nil {
		loc := map[string]any{"city": p.Location.City}
		putStr(loc, "state", p.Location.State)
		putStr(loc, "country", p.Location.Country)
		putFloat(loc, "latitude", p.Location.Latitude)
		putFloat(loc, "longitude", p.Location.Longitude)
		m["location"] = loc
	}
	if p.Photos != nil {
		photos := make([]any, 0, len(p.Photos))
		for _, ph := range p.Photos {
			photos = append(photos, map[string]any{"ref": ph.Ref})
		}
		m["photos"] = photos
	}
	putStrList(m, "interests", p.Interests)
	putInt(m, "height", p.Height)
	putStr(m, "occupation", p.Occupation)
	putStr(m, "education", p.Education)
	putStr(m, "relationshipType", p.RelationshipType)
	putStr(m, "smoking", p.Smoking)
	putStr(m, "drinking", p.Drinking)
	putStr(m, "children", p.Children)
	putStrList(m, "pets", p.Pets)
	putStrList(m, "languages", p.Languages)
	putBool(m, "isActive", p.IsActive)
	putBool(m, "isPremium", p.IsPremium)
	putStr(m, "createdAt", p.CreatedAt)
	putStr(m, "updatedAt", p.UpdatedAt)
	return m
}

func encodeLike(l Like) map[string]any {
	m := map[string]any{
		TypeField:   l.NSID(),
		"subject":   l.Subject,
		"createdAt": l.CreatedAt,
		"superLike": l.SuperLike,
	}
	putStr(m, "message", l.Message)
	return m
}

func encodePass(p Pass) map[string]any {
	return map[string]any{
		TypeField:   p.NSID(),
		"subject":   p.Subject,
		"createdAt": p.CreatedAt,
	}
}

func encodeMatch(mt Match) map[string]any {
	m := map[string]any{
		TypeField:   mt.NSID(),
		"user1":     mt.User1,
		"user2":     mt.User2,
		"createdAt": mt.CreatedAt,
		"isActive":  mt.IsActive,
	}
	putStr(m, "lastMessageAt", mt.LastMessageAt)
	return m
}

// DecodeProfile reads a generic JSON document back into a Profile.
// Missing fields become their documented default (absent value or
// empty list) and unknown fields are ignored; decoding never fails.
func DecodeProfile(m map[string]any) Profile {
	p := Profile{
		DisplayName:      optString(m, "displayName"),
		Bio:              optString(m, "bio"),
		Birthdate:        optString(m, "birthdate"),
		Gender:           optString(m, "gender"),
		LookingFor:       strList(m, "lookingFor"),
		Interests:        strList(m, "interests"),
		Height:           optInt(m, "height"),
		Occupation:       optString(m, "occupation"),
		Education:        optString(m, "education"),
		RelationshipType: optString(m, "relationshipType"),
		Smoking:          optString(m, "smoking"),
		Drinking:         optString(m, "drinking"),
		Children:         optString(m, "children"),
		Pets:             strList(m, "pets"),
		Languages:        strList(m, "languages"),
		IsActive:         optBool(m, "isActive"),
		IsPremium:        optBool(m, "isPremium"),
		CreatedAt:        optString(m, "createdAt"),
		UpdatedAt:        optString(m, "updatedAt"),
	}
	if loc, ok := m["location"].(map[string]any); ok {
		p.Location = &Location{
			City:      str(loc, "city"),
			State:     optString(loc, "state"),
			Country:   optString(loc, "country"),
			Latitude:  optFloat(loc, "latitude"),
			Longitude: optFloat(loc, "longitude"),
		}
	}
	if photos, ok := m["photos"].([]any); ok {
		p.Photos = make([]PhotoRef, 0, len(photos))
		for _, raw := range photos {
			if ph, ok := raw.(map[string]any); ok {
				p.Photos = append(p.Photos, PhotoRef{Ref: str(ph, "ref")})
			}
		}
	}
	return p
}

// DecodeLike reads a generic JSON document back into a Like.
func DecodeLike(m map[string]any) Like {
	return Like{
		Subject:   str(m, "subject"),
		Message:   optString(m, "message"),
		CreatedAt: str(m, "createdAt"),
		SuperLike: boolOr(m, "superLike", false),
	}
}

// DecodePass reads a generic JSON document back into a Pass.
func DecodePass(m map[string]any) Pass {
	return Pass{
		Subject:   str(m, "subject"),
		CreatedAt: str(m, "createdAt"),
	}
}

// DecodeMatch reads a generic JSON document back into a Match.
func DecodeMatch(m map[string]any) Match {
	return Match{
		User1:         str(m, "user1"),
		User2:         str(m, "user2"),
		CreatedAt:     str(m, "createdAt"),
		IsActive:      boolOr(m, "isActive", true),
		LastMessageAt: optString(m, "lastMessageAt"),
	}
}

// DecodeProfileCard reads one com.fypapp.discover result entry.
func DecodeProfileCard(m map[string]any) ProfileCard {
	card := ProfileCard{
		DID:             str(m, "did"),
		Distance:        optFloat(m, "distance"),
		MatchScore:      optInt(m, "matchScore"),
		CommonInterests: strList(m, "commonInterests"),
		RecentlyActive:  optBool(m, "recentlyActive"),
	}
	if sub, ok := m["profile"].(map[string]any); ok {
		p := DecodeProfile(sub)
		card.Profile = &p
	}
	return card
}

// DecodeProfileView reads the com.fypapp.getProfile output.
func DecodeProfileView(m map[string]any) ProfileView {
	view := ProfileView{
		URI:        str(m, "uri"),
		CID:        str(m, "cid"),
		MatchScore: optInt(m, "matchScore"),
		Distance:   optFloat(m, "distance"),
		IsLiked:    optBool(m, "isLiked"),
		IsMatched:  optBool(m, "isMatched"),
		IsBlocked:  optBool(m, "isBlocked"),
	}
	if sub, ok := m["profile"].(map[string]any); ok {
		p := DecodeProfile(sub)
		view.Profile = &p
	}
	return view
}

func putStr(m map[string]any, key string, v *string) {
	if v != nil {
		m[key] = *v
	}
}

func putStrList(m map[string]any, key string, v []string) {
	if v != nil {
		list := make([]any, 0, len(v))
		for _, s := range v {
			list = append(list, s)
		}
		m[key] = list
	}
}

func putInt(m map[string]any, key string, v *int) {
	if v != nil {
		m[key] = *v
	}
}

func putFloat(m map[string]any, key string, v *float64) {
	if v != nil {
		m[key] = *v
	}
}

func putBool(m map[string]any, key string, v *bool) {
	if v != nil {
		m[key] = *v
	}
}

func str(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func optString(m map[string]any, key string) *string {
	if s, ok := m[key].(string); ok {
		return &s
	}
	return nil
}

func optBool(m map[string]any, key string) *bool {
	if b, ok := m[key].(bool); ok {
		return &b
	}
	return nil
}

func boolOr(m map[string]any, key string, def bool) bool {
	if b, ok := m[key].(bool); ok {
		return b
	}
	return def
}

func optFloat(m map[string]any, key string) *float64 {
	switch n := m[key].(type) {
	case float64:
		return &n
	case int:
		f := float64(n)
		return &f
	}
	return nil
}

func optInt(m map[string]any, key string) *int {
	switch n := m[key].(type) {
	case float64:
		i := int(n)
		return &i
	case int:
		i := n
		return &i
	}
	return nil
}

func strList(m map[string]any, key string) []string {
	raw, ok := m[key].([]any)
	if !ok {
		// Already-typed lists appear when a document was built in
		// process rather than decoded from JSON.
		if typed, ok := m[key].([]string); ok {
			out := make([]string, len(typed))
			copy(out, typed)
			return out
		}
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
