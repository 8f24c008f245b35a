// 导入合作院校的 SSO 配置
//
// 用法: go run ./scripts/seed_sso -file configs/sso.yaml
//
// 文件格式:
//
//	institutions:
//	  - name: Example Medical School
//	    domain: example.edu
//	    active: true
//	    idp_entity_id: https://idp.example.edu
//	    idp_sso_url: https://idp.example.edu/sso
//	    idp_x509_cert: |
//	      MIIC...
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"medboard_backend/internal/config"
	"medboard_backend/internal/model"
	"medboard_backend/internal/repository"
	"medboard_backend/pkg/database"
	"medboard_backend/pkg/logger"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type institution struct {
	Name        string `yaml:"name"`
	Domain      string `yaml:"domain"`
	Active      *bool  `yaml:"active"`
	IdPEntityID string `yaml:"idp_entity_id"`
	IdPSSOURL   string `yaml:"idp_sso_url"`
	IdPX509Cert string `yaml:"idp_x509_cert"`
}

type seedFile struct {
	Institutions []institution `yaml:"institutions"`
}

func loadSeed(path string) ([]model.SSOConfiguration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("解析 %s 失败: %w", path, err)
	}

	configs := make([]model.SSOConfiguration, 0, len(seed.Institutions))
	for i, inst := range seed.Institutions {
		if inst.Name == "" || inst.Domain == "" {
			return nil, fmt.Errorf("第 %d 条记录缺少 name 或 domain", i+1)
		}
		active := true
		if inst.Active != nil {
			active = *inst.Active
		}
		configs = append(configs, model.SSOConfiguration{
			InstitutionName: inst.Name,
			Domain:          inst.Domain,
			IsActive:        active,
			IdPEntityID:     inst.IdPEntityID,
			IdPSSOURL:       inst.IdPSSOURL,
			IdPX509Cert:     inst.IdPX509Cert,
		})
	}
	return configs, nil
}

func main() {
	file := flag.String("file", "configs/sso.yaml", "SSO 配置文件")
	flag.Parse()

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	configs, err := loadSeed(*file)
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}
	repo := repository.NewUserRepository(db)

	for i := range configs {
		if err := repo.SaveSSO(&configs[i]); err != nil {
			log.Fatalf("保存 %s 失败: %v", configs[i].Domain, err)
		}
		logger.Log.Info("SSO 配置已导入",
			zap.String("institution", configs[i].InstitutionName),
			zap.String("domain", configs[i].Domain),
			zap.Bool("active", configs[i].IsActive))
	}
	log.Printf("完成！共导入 %d 条 SSO 配置", len(configs))
}
