package model

// User represents a credential record as stored in the `usuarios`
// table.  Records are provisioned outside this service and are only ever
// read here.
//
// Fields:
//  ID           – usuarios.id
//  Username     – usuarios.usuario, unique and stored lower-cased.
//  DisplayName  – usuarios.nombre
//  Role         – usuarios.cargo
//  PasswordHash – usuarios.password_hash, a bcrypt string such as
//                 "$2b$12$<salt><digest>".  Never empty, never logged and
//                 never serialised.
type User struct {
	ID           int64  `json:"-"`
	Username     string `json:"-"`
	DisplayName  string `json:"-"`
	Role         string `json:"-"`
	PasswordHash string `json:"-"`
}

// Profile is the public view of a User returned after a successful login.
type Profile struct {
	ID          int64  `json:"id"`
	Username    string `json:"usuario"`
	DisplayName string `json:"nombre"`
	Role        string `json:"cargo"`
}

// Profile strips the stored hash from the record.
func (u User) Profile() Profile {
	return Profile{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		Role:        u.Role,
	}
}
