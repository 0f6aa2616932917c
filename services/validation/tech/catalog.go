// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package tech

import "github.com/AleutianAI/hardgate/services/validation/language"

// Category groups technologies by concern.
type Category string

const (
	CategoryLogging       Category = "logging"
	CategoryWebFrameworks Category = "web_frameworks"
	CategoryAsync         Category = "async"
	CategoryTesting       Category = "testing"
	CategoryDatabase      Category = "database"
	CategoryMonitoring    Category = "monitoring"
	CategoryFrontend      Category = "frontend"
	CategoryResilience    Category = "resilience"
)

// entry is one (category, technology, patterns) triple for a language.
// A technology is marked present when any pattern matches file content or
// a manifest file mentions it.
type entry struct {
	category Category
	name     string
	patterns []string
}

// catalog holds the known technology fingerprints per language. Patterns
// are regexes compiled case-insensitively.
var catalog = map[language.Language][]entry{
	language.Java: {
		{CategoryLogging, "slf4j", []string{`org\.slf4j`, `LoggerFactory\.getLogger`}},
		{CategoryLogging, "logback", []string{`ch\.qos\.logback`, `logback(-spring)?\.xml`}},
		{CategoryLogging, "log4j", []string{`org\.apache\.log(ging\.log)?4j`}},
		{CategoryWebFrameworks, "spring", []string{`org\.springframework`, `@(RestController|RequestMapping|SpringBootApplication)`}},
		{CategoryWebFrameworks, "jaxrs", []string{`javax\.ws\.rs`, `jakarta\.ws\.rs`}},
		{CategoryAsync, "quartz", []string{`org\.quartz`, `@Scheduled\b`}},
		{CategoryAsync, "kafka", []string{`org\.apache\.kafka`, `@KafkaListener`}},
		{CategoryAsync, "rabbitmq", []string{`com\.rabbitmq`, `@RabbitListener`}},
		{CategoryTesting, "junit", []string{`org\.junit`, `@Test\b`}},
		{CategoryTesting, "mockito", []string{`org\.mockito`, `Mockito\.`}},
		{CategoryDatabase, "jpa", []string{`javax\.persistence`, `jakarta\.persistence`, `@Entity\b`}},
		{CategoryDatabase, "jdbc", []string{`java\.sql\.`, `JdbcTemplate`}},
		{CategoryMonitoring, "micrometer", []string{`io\.micrometer`}},
		{CategoryResilience, "resilience4j", []string{`io\.github\.resilience4j`, `@CircuitBreaker`, `@Retry\b`}},
		{CategoryResilience, "hystrix", []string{`com\.netflix\.hystrix`, `@HystrixCommand`}},
	},
	language.Python: {
		{CategoryLogging, "logging", []string{`import logging`, `logging\.getLogger`}},
		{CategoryLogging, "structlog", []string{`import structlog`, `structlog\.get_logger`}},
		{CategoryLogging, "loguru", []string{`from loguru import`, `loguru`}},
		{CategoryWebFrameworks, "flask", []string{`from flask import`, `Flask\(__name__\)`}},
		{CategoryWebFrameworks, "django", []string{`from django`, `django\.`}},
		{CategoryWebFrameworks, "fastapi", []string{`from fastapi import`, `FastAPI\(`}},
		{CategoryAsync, "celery", []string{`from celery import`, `@(shared_task|app\.task|celery\.task)`}},
		{CategoryAsync, "asyncio", []string{`import asyncio`, `async def `}},
		{CategoryAsync, "rq", []string{`from rq import`, `import rq\b`}},
		{CategoryTesting, "pytest", []string{`import pytest`, `@pytest\.`}},
		{CategoryTesting, "unittest", []string{`import unittest`, `unittest\.TestCase`}},
		{CategoryDatabase, "sqlalchemy", []string{`from sqlalchemy import`, `sqlalchemy`}},
		{CategoryDatabase, "psycopg", []string{`import psycopg`}},
		{CategoryMonitoring, "prometheus_client", []string{`from prometheus_client import`}},
		{CategoryResilience, "tenacity", []string{`from tenacity import`, `@retry\b`}},
		{CategoryResilience, "pybreaker", []string{`import pybreaker`, `CircuitBreaker\(`}},
	},
	language.JavaScript: {
		{CategoryLogging, "winston", []string{`require\(['"]winston['"]\)`, `from ['"]winston['"]`}},
		{CategoryLogging, "pino", []string{`require\(['"]pino['"]\)`, `from ['"]pino['"]`}},
		{CategoryLogging, "bunyan", []string{`require\(['"]bunyan['"]\)`}},
		{CategoryWebFrameworks, "express", []string{`require\(['"]express['"]\)`, `from ['"]express['"]`}},
		{CategoryWebFrameworks, "koa", []string{`require\(['"]koa['"]\)`}},
		{CategoryWebFrameworks, "fastify", []string{`require\(['"]fastify['"]\)`, `from ['"]fastify['"]`}},
		{CategoryAsync, "bull", []string{`require\(['"]bull(mq)?['"]\)`, `from ['"]bull(mq)?['"]`}},
		{CategoryAsync, "agenda", []string{`require\(['"]agenda['"]\)`}},
		{CategoryAsync, "node-cron", []string{`require\(['"]node-cron['"]\)`, `cron\.schedule\(`}},
		{CategoryTesting, "jest", []string{`from ['"]@jest/globals['"]`, `\bjest\.(fn|mock|spyOn)\(`}},
		{CategoryTesting, "mocha", []string{`require\(['"]mocha['"]\)`, `\bdescribe\(\s*['"]`}},
		{CategoryDatabase, "mongoose", []string{`require\(['"]mongoose['"]\)`}},
		{CategoryDatabase, "sequelize", []string{`require\(['"]sequelize['"]\)`}},
		{CategoryMonitoring, "prom-client", []string{`require\(['"]prom-client['"]\)`}},
		{CategoryFrontend, "react", []string{`from ['"]react['"]`, `require\(['"]react['"]\)`}},
		{CategoryFrontend, "vue", []string{`from ['"]vue['"]`, `new Vue\(`}},
		{CategoryResilience, "opossum", []string{`require\(['"]opossum['"]\)`, `from ['"]opossum['"]`}},
		{CategoryResilience, "axios-retry", []string{`require\(['"]axios-retry['"]\)`, `from ['"]axios-retry['"]`}},
	},
	language.TypeScript: {
		{CategoryLogging, "winston", []string{`from ['"]winston['"]`}},
		{CategoryLogging, "pino", []string{`from ['"]pino['"]`}},
		{CategoryWebFrameworks, "express", []string{`from ['"]express['"]`}},
		{CategoryWebFrameworks, "nestjs", []string{`from ['"]@nestjs/`}},
		{CategoryWebFrameworks, "fastify", []string{`from ['"]fastify['"]`}},
		{CategoryAsync, "bullmq", []string{`from ['"]bull(mq)?['"]`}},
		{CategoryAsync, "node-cron", []string{`from ['"]node-cron['"]`, `cron\.schedule\(`}},
		{CategoryTesting, "jest", []string{`from ['"]@jest/globals['"]`, `\bjest\.(fn|mock|spyOn)\(`}},
		{CategoryTesting, "vitest", []string{`from ['"]vitest['"]`}},
		{CategoryDatabase, "typeorm", []string{`from ['"]typeorm['"]`}},
		{CategoryDatabase, "prisma", []string{`from ['"]@prisma/client['"]`}},
		{CategoryMonitoring, "prom-client", []string{`from ['"]prom-client['"]`}},
		{CategoryFrontend, "react", []string{`from ['"]react['"]`}},
		{CategoryFrontend, "angular", []string{`from ['"]@angular/`}},
		{CategoryResilience, "opossum", []string{`from ['"]opossum['"]`}},
		{CategoryResilience, "cockatiel", []string{`from ['"]cockatiel['"]`}},
	},
	language.CSharp: {
		{CategoryLogging, "serilog", []string{`using Serilog`, `Log\.(Logger|Information|Error)`}},
		{CategoryLogging, "nlog", []string{`using NLog`, `LogManager\.GetCurrentClassLogger`}},
		{CategoryLogging, "ilogger", []string{`ILogger<`, `Microsoft\.Extensions\.Logging`}},
		{CategoryWebFrameworks, "aspnetcore", []string{`Microsoft\.AspNetCore`, `\[ApiController\]`}},
		{CategoryAsync, "hangfire", []string{`using Hangfire`, `BackgroundJob\.Enqueue`}},
		{CategoryAsync, "quartz", []string{`using Quartz`}},
		{CategoryTesting, "xunit", []string{`using Xunit`, `\[Fact\]`, `\[Theory\]`}},
		{CategoryTesting, "nunit", []string{`using NUnit`, `\[Test\]`}},
		{CategoryTesting, "moq", []string{`using Moq`, `new Mock<`}},
		{CategoryDatabase, "efcore", []string{`Microsoft\.EntityFrameworkCore`, `DbContext\b`}},
		{CategoryDatabase, "dapper", []string{`using Dapper`}},
		{CategoryMonitoring, "appinsights", []string{`Microsoft\.ApplicationInsights`}},
		{CategoryResilience, "polly", []string{`using Polly`, `Policy\.(Handle|Timeout|WrapAsync)`}},
	},
}
