package config

import "github.com/joho/godotenv"

// LoadEnv loads a .env file from the working directory if one exists.
// The returned error satisfies os.IsNotExist when the file is simply absent.
func LoadEnv() error {
	return godotenv.Load()
}
